package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/c360studio/pedigraph/vocabulary/genealogy"
	"github.com/c360studio/semstreams/message"
)

// DefaultIngestSubject is the subject converted entities are published on.
const DefaultIngestSubject = "graph.ingest.entity"

// messageSource tags every published triple.
const messageSource = "pedigraph.convert"

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subj string, data []byte) error
	Flush() error
}

// Publisher sends converted entities to a message subject, one message per
// entity in the configured namespace.
type Publisher struct {
	conn      Conn
	subject   string
	namespace string
	runID     string
	logger    *slog.Logger
}

// NewPublisher creates a publisher. A nil conn yields a publisher that does
// nothing, so callers can skip the messaging setup entirely.
func NewPublisher(conn Conn, subject, namespace, runID string, logger *slog.Logger) *Publisher {
	if subject == "" {
		subject = DefaultIngestSubject
	}
	if namespace == "" {
		namespace = genealogy.DefaultEntityNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:      conn,
		subject:   subject,
		namespace: namespace,
		runID:     runID,
		logger:    logger,
	}
}

// PublishStore publishes every entity whose IRI lives in the publisher's
// namespace and returns the number of messages sent.
func (p *Publisher) PublishStore(ctx context.Context, s Store) (int, error) {
	if p.conn == nil {
		return 0, nil
	}

	payloads, err := p.Payloads(ctx, s)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, payload := range payloads {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return sent, fmt.Errorf("marshal entity %s: %w", payload.EntityID(), err)
		}
		if err := p.conn.Publish(p.subject, data); err != nil {
			return sent, fmt.Errorf("publish entity %s: %w", payload.EntityID(), err)
		}
		sent++
	}

	if err := p.conn.Flush(); err != nil {
		return sent, fmt.Errorf("flush publisher: %w", err)
	}

	p.logger.Info("Published entities",
		"subject", p.subject,
		"count", sent,
		"run_id", p.runID)
	return sent, nil
}

// Payloads groups the store's triples into one payload per entity subject
// in the namespace, in first-seen order.
func (p *Publisher) Payloads(ctx context.Context, s Store) ([]*EntityPayload, error) {
	triples, err := s.Match(ctx, Pattern{})
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}

	now := time.Now()
	var order []string
	bySubject := make(map[string]*EntityPayload)
	for _, t := range triples {
		if !t.Subject.IsIRI() || !strings.HasPrefix(t.Subject.Value, p.namespace) {
			continue
		}
		id := strings.TrimPrefix(t.Subject.Value, p.namespace)
		payload, ok := bySubject[id]
		if !ok {
			payload = &EntityPayload{EntityID_: id, RunID: p.runID, UpdatedAt: now}
			bySubject[id] = payload
			order = append(order, id)
		}
		payload.TripleData = append(payload.TripleData, p.messageTriple(id, t, now))
		payload.observe(t)
	}

	out := make([]*EntityPayload, 0, len(order))
	for _, id := range order {
		out = append(out, bySubject[id])
	}
	return out, nil
}

// messageTriple converts an RDF statement to the dotted-predicate form.
// Objects in the namespace are shortened to entity IDs.
func (p *Publisher) messageTriple(id string, t Triple, now time.Time) message.Triple {
	predicate := t.Predicate.Value
	if dotted, ok := genealogy.PredicateForIRI(predicate); ok {
		predicate = dotted
	}

	object := t.Object.Value
	if t.Object.IsIRI() && strings.HasPrefix(object, p.namespace) {
		object = strings.TrimPrefix(object, p.namespace)
	}

	return message.Triple{
		Subject:    id,
		Predicate:  predicate,
		Object:     object,
		Source:     messageSource,
		Timestamp:  now,
		Confidence: 1.0,
	}
}
