package commands

import (
	"context"
	"errors"
	"fmt"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

// newClient builds a Client over the selected store. close releases both.
func newClient(ctx context.Context, mutate ...func(*goAuthClient.Builder)) (*goAuthClient.Client, func(), error) {
	store, cleanup, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	b := goAuthClient.New().
		WithConfig(config).
		WithLogger(logger).
		WithSessionStore(store)
	if auditEvents {
		b.WithAuditSink(goAuthClient.NewSlogSink(logger))
	}
	for _, m := range mutate {
		m(b)
	}

	client, err := b.Build()
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return client, func() {
		_ = client.Close()
		cleanup()
	}, nil
}

type signalChan chan goAuthClient.Signal

func (c signalChan) OnSignal(s goAuthClient.Signal) { c <- s }

// errCancelled reports an attempt stopped before its outcome arrived.
var errCancelled = errors.New("attempt cancelled")

// runAttempt starts an attempt and waits for the signal that decides it: the focused
// field error of a rejected attempt, or the outcome signal following SubmissionEnded.
// Cancelling ctx cancels the attempt.
func runAttempt(ctx context.Context, sub *goAuthClient.Submitter, signals signalChan, creds goAuthClient.Credentials) (goAuthClient.Signal, error) {
	switch res := sub.Attempt(creds); res {
	case goAuthClient.AttemptRejected:
		for s := range signals {
			if s.Kind == goAuthClient.SignalFieldError && s.Focus {
				return s, nil
			}
		}
		return goAuthClient.Signal{}, errCancelled
	case goAuthClient.AttemptStarted:
	default:
		return goAuthClient.Signal{}, fmt.Errorf("attempt not started: %s", res)
	}

	done := ctx.Done()
	ended := false
	for {
		select {
		case s := <-signals:
			if ended {
				return s, nil
			}
			ended = s.Kind == goAuthClient.SignalSubmissionEnded
		case <-done:
			done = nil
			if !sub.Cancel() {
				// The response is already in; its outcome follows.
				continue
			}
			for !ended {
				ended = (<-signals).Kind == goAuthClient.SignalSubmissionEnded
			}
			return goAuthClient.Signal{}, errCancelled
		}
	}
}
