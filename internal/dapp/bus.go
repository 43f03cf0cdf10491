package dapp

import (
	evbus "github.com/asaskevich/EventBus"
)

// Bus topics.
const (
	TopicView         = "dapp:view"
	TopicNotification = "dapp:notification"
)

// Subscribe calls fn with a fresh View after every state change. fn runs on
// the goroutine that changed state and must not block.
func (c *Controller) Subscribe(fn func(View)) (unsubscribe func()) {
	return subscribe(c.bus, TopicView, fn)
}

// OnNotification calls fn whenever a notification is shown.
func (c *Controller) OnNotification(fn func(Notification)) (unsubscribe func()) {
	return subscribe(c.bus, TopicNotification, fn)
}

func subscribe(bus evbus.Bus, topic string, fn interface{}) func() {
	if err := bus.Subscribe(topic, fn); err != nil {
		return func() {}
	}
	return func() {
		bus.Unsubscribe(topic, fn) //nolint:errcheck
	}
}

func (c *Controller) publish() {
	c.bus.Publish(TopicView, c.View())
}

func (c *Controller) publishNotification(n Notification) {
	c.bus.Publish(TopicNotification, n)
	c.bus.Publish(TopicView, c.View())
}
