package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/scorelink/internal/pipeline"
	"github.com/OFFIS-RIT/scorelink/pkg/logger"
	"github.com/OFFIS-RIT/scorelink/pkg/sheet"

	"github.com/go-playground/validator"
)

var ErrInvalidMessage = errors.New("invalid resolve message")

// ResolveMsg asks for the resolution of a stored score document.
type ResolveMsg struct {
	DocumentKey   string `json:"document_key" validate:"required"`
	SnapshotKey   string `json:"snapshot_key,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// DocumentSource fetches score documents by key.
type DocumentSource interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Locker serializes work on one document across workers.
type Locker interface {
	WithLease(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

var validate = validator.New()

func ParseResolveMsg(body []byte) (*ResolveMsg, error) {
	msg := new(ResolveMsg)
	if err := json.Unmarshal(body, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := validate.Struct(msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return msg, nil
}

// ProcessResolveMessage fetches the document named by the message, resolves
// it and stores the index snapshot under the requested key. A non-nil locker
// holds the document lease for the whole resolution.
func ProcessResolveMessage(
	ctx context.Context,
	docs DocumentSource,
	locker Locker,
	params pipeline.Params,
	body []byte,
) (*pipeline.Result, error) {
	msg, err := ParseResolveMsg(body)
	if err != nil {
		return nil, err
	}
	if locker == nil {
		return resolveDocument(ctx, docs, params, msg)
	}

	var res *pipeline.Result
	err = locker.WithLease(ctx, msg.DocumentKey, func(ctx context.Context) error {
		var err error
		res, err = resolveDocument(ctx, docs, params, msg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func resolveDocument(ctx context.Context, docs DocumentSource, params pipeline.Params, msg *ResolveMsg) (*pipeline.Result, error) {
	data, err := docs.Fetch(ctx, msg.DocumentKey)
	if err != nil {
		return nil, fmt.Errorf("fetch document %q: %w", msg.DocumentKey, err)
	}
	doc, err := sheet.DecodeBytes(data, sheet.FormatOf(msg.DocumentKey))
	if err != nil {
		return nil, fmt.Errorf("decode document %q: %w", msg.DocumentKey, err)
	}

	params.Key = msg.SnapshotKey
	res, err := pipeline.Resolve(ctx, doc, params)
	if err != nil {
		return nil, err
	}

	logger.Info("[Worker] Document resolved",
		"document", msg.DocumentKey,
		"snapshot", res.Key,
		"correlation_id", msg.CorrelationID,
		"pending", len(res.Pending),
	)
	return res, nil
}
