package outbox

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/angelmondragon/atacado-backend/pkg/enums"
	"github.com/angelmondragon/atacado-backend/pkg/outbox/payloads"
)

type decoderFunc func(payload json.RawMessage) (interface{}, error)

type registryKey struct {
	eventType enums.OutboxEventType
	version   int
}

type DecoderRegistry struct {
	mtx      sync.RWMutex
	registry map[registryKey]decoderFunc
}

func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{registry: make(map[registryKey]decoderFunc)}
}

func (r *DecoderRegistry) Register(eventType enums.OutboxEventType, version int, decoder decoderFunc) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.registry[registryKey{eventType: eventType, version: version}] = decoder
}

// Has reports whether a decoder exists for eventType at version.
func (r *DecoderRegistry) Has(eventType enums.OutboxEventType, version int) bool {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	_, ok := r.registry[registryKey{eventType: eventType, version: version}]
	return ok
}

func (r *DecoderRegistry) Decode(eventType enums.OutboxEventType, version int, payload json.RawMessage) (interface{}, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	if decoder, ok := r.registry[registryKey{eventType: eventType, version: version}]; ok {
		return decoder(payload)
	}
	return nil, fmt.Errorf("decoder not registered for %s@v%d", eventType, version)
}

// DecodeEnvelope unwraps a stored row payload and decodes its data section.
func (r *DecoderRegistry) DecodeEnvelope(eventType enums.OutboxEventType, raw json.RawMessage) (PayloadEnvelope, interface{}, error) {
	var envelope PayloadEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return PayloadEnvelope{}, nil, fmt.Errorf("decode envelope: %w", err)
	}
	data, err := r.Decode(eventType, envelope.Version, envelope.Data)
	if err != nil {
		return envelope, nil, err
	}
	return envelope, data, nil
}

// NewDefaultRegistry registers the v1 decoders of every event this service emits.
func NewDefaultRegistry() *DecoderRegistry {
	r := NewDecoderRegistry()
	r.Register(enums.EventOrderPlaced, 1, decodeInto[payloads.OrderPlacedEvent])
	r.Register(enums.EventOrderStatusChanged, 1, decodeInto[payloads.OrderStatusChangedEvent])
	r.Register(enums.EventCashbackEarned, 1, decodeInto[payloads.CashbackPostedEvent])
	r.Register(enums.EventCashbackUsed, 1, decodeInto[payloads.CashbackPostedEvent])
	return r
}

func decodeInto[T any](payload json.RawMessage) (interface{}, error) {
	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}
