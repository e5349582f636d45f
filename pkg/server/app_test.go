package server

import (
	"context"
	"errors"
	"testing"
)

type recordingCloser struct {
	name  string
	order *[]string
	err   error
}

func (c recordingCloser) Close() error {
	*c.order = append(*c.order, c.name)
	return c.err
}

func TestRunContextClosesResourcesInReverse(t *testing.T) {
	var order []string
	app := New(nil, nil, nil, nil, 0,
		Resource{Name: "pool", Closer: recordingCloser{name: "pool", order: &order}},
		Resource{Name: "nil"},
		Resource{Name: "store", Closer: recordingCloser{name: "store", order: &order, err: errors.New("boom")}},
		Resource{Name: "sink", Closer: recordingCloser{name: "sink", order: &order}},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := app.RunContext(ctx); err != nil {
		t.Fatalf("RunContext: %v", err)
	}

	want := []string{"sink", "store", "pool"}
	if len(order) != len(want) {
		t.Fatalf("closed %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("closed %v, want %v", order, want)
		}
	}
}
