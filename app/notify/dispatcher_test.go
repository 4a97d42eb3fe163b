package notify

import (
	"context"
	"errors"
	"slices"
	"testing"
)

type MockPublisher struct {
	published []Notification
	err       error
}

func (m *MockPublisher) Publish(ctx context.Context, n Notification) error {
	m.published = append(m.published, n)
	return m.err
}

func TestMessage(t *testing.T) {
	got := Message("Tor für Bayern", "Bayern", "Dortmund", "1 : 0")
	expected := "Tor für Bayern - Bayern 1 : 0 Dortmund"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestDispatch(t *testing.T) {
	pub := &MockPublisher{}
	d := NewDispatcher(pub, nil)

	d.Dispatch(context.Background(), "Anstoss", "Bayern", "Dortmund", "0 : 0", []string{"s1", "s2"})

	if len(pub.published) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(pub.published))
	}
	n := pub.published[0]
	if n.Text != "Anstoss - Bayern 0 : 0 Dortmund" {
		t.Errorf("Unexpected text %q", n.Text)
	}
	if !slices.Equal(n.Recipients, []string{"s1", "s2"}) {
		t.Errorf("Unexpected recipients %v", n.Recipients)
	}
	if stats := d.Stats(); stats.Sent != 1 || stats.Failed != 0 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestDispatchNoRecipients(t *testing.T) {
	pub := &MockPublisher{}
	d := NewDispatcher(pub, nil)

	d.Dispatch(context.Background(), "Anstoss", "Bayern", "Dortmund", "0 : 0", nil)

	if len(pub.published) != 0 {
		t.Errorf("Expected no notification, got %d", len(pub.published))
	}
}

func TestDispatchPublishFailure(t *testing.T) {
	pub := &MockPublisher{err: errors.New("backend unavailable")}
	d := NewDispatcher(pub, nil)

	d.Dispatch(context.Background(), "Spielende", "Bayern", "Dortmund", "2 : 1", []string{"s1"})

	if len(pub.published) != 1 {
		t.Errorf("Expected a single attempt, got %d", len(pub.published))
	}
	if stats := d.Stats(); stats.Sent != 0 || stats.Failed != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}
