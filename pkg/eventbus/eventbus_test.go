package eventbus

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/sanifleet/sanifleet/pkg/logging"
)

type importDone struct {
	entityType string
	inserted   int
}

func TestPublisher_NoMatchingSubscriberLogsWarning(t *testing.T) {
	type other struct{ v string }

	logBuffer := bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(&logBuffer)
	log.SetLevel(logrus.WarnLevel)

	publisher := NewEventPublisher(log)
	publisher.Subscribe(func(e *importDone) {
		t.Error("should not be called")
	})
	publisher.Publish(&other{v: "x"})

	if output := logBuffer.String(); !strings.Contains(output, "no matching subscribers") {
		t.Errorf("expected no-subscriber warning, got: %q", output)
	}
}

func TestPublisher_SubscribeAndPublish(t *testing.T) {
	publisher := NewEventPublisher(logging.ConsoleLogger(logrus.WarnLevel))
	var got *importDone
	publisher.Subscribe(func(e *importDone) {
		got = e
	})
	publisher.Publish(&importDone{entityType: "vehicles", inserted: 3})

	if got == nil {
		t.Fatal("subscriber was not called")
	}
	if got.entityType != "vehicles" || got.inserted != 3 {
		t.Errorf("unexpected event payload: %+v", got)
	}
}

func TestPublisher_UnsubscribeAndCount(t *testing.T) {
	publisher := NewEventPublisher(logging.ConsoleLogger(logrus.PanicLevel))
	handler := func(e *importDone) {}
	publisher.Subscribe(handler)
	if publisher.SubscribersCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", publisher.SubscribersCount())
	}
	publisher.Clear()
	if publisher.SubscribersCount() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", publisher.SubscribersCount())
	}
}
