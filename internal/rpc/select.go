package rpc

import (
	"context"
)

// Select returns the endpoint to use for a network. A single URL is returned
// untested; otherwise every URL is probed and the algorithm picks a winner.
func Select(ctx context.Context, urls []string, algo Algorithm, chainID int64) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}

	winner, err := NewPicker(algo).Pick(ToEndpoints(ProbeAll(ctx, urls, chainID)))
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}
