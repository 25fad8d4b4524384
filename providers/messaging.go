package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/wasmatrix/wasmatrix/core"
)

// Broker is the transport backend of the messaging provider.
type Broker interface {
	Publish(ctx context.Context, topic, message string) error
	Subscribe(ctx context.Context, instanceID, topic string) error
	Unsubscribe(ctx context.Context, instanceID, topic string) error
}

// MemoryBroker is the in-process Broker used when no Redis backend is
// configured. Published messages are retained per topic so tests can
// observe delivery.
type MemoryBroker struct {
	mu       sync.RWMutex
	subs     map[string]map[string]struct{}
	messages map[string][]string
}

// NewMemoryBroker returns an empty broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		subs:     make(map[string]map[string]struct{}),
		messages: make(map[string][]string),
	}
}

func (b *MemoryBroker) Publish(_ context.Context, topic, message string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[topic] = append(b.messages[topic], message)
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, instanceID, topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[string]struct{})
	}
	b.subs[topic][instanceID] = struct{}{}
	return nil
}

func (b *MemoryBroker) Unsubscribe(_ context.Context, instanceID, topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.subs[topic]; ok {
		delete(subs, instanceID)
		if len(subs) == 0 {
			delete(b.subs, topic)
		}
	}
	return nil
}

// Subscribers returns the instance ids subscribed to the topic.
func (b *MemoryBroker) Subscribers(topic string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []string
	for id := range b.subs[topic] {
		out = append(out, id)
	}
	return out
}

// Messages returns the messages published to the topic, in order.
func (b *MemoryBroker) Messages(topic string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.messages[topic]))
	copy(out, b.messages[topic])
	return out
}

// redisChannelPrefix namespaces pub/sub channels.
const redisChannelPrefix = "wasmatrix:msg:"

// RedisBroker is a Broker backed by Redis pub/sub.
type RedisBroker struct {
	client *redis.Client

	mu   sync.Mutex
	subs map[string]*redis.PubSub
}

// NewRedisBroker returns a broker using the given client.
func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client, subs: make(map[string]*redis.PubSub)}
}

func (b *RedisBroker) Publish(ctx context.Context, topic, message string) error {
	return b.client.Publish(ctx, redisChannelPrefix+topic, message).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, instanceID, topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := instanceID + "\x00" + topic
	if _, ok := b.subs[key]; ok {
		return nil
	}
	b.subs[key] = b.client.Subscribe(ctx, redisChannelPrefix+topic)
	return nil
}

func (b *RedisBroker) Unsubscribe(_ context.Context, instanceID, topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := instanceID + "\x00" + topic
	sub, ok := b.subs[key]
	if !ok {
		return nil
	}
	delete(b.subs, key)
	return sub.Close()
}

// Close tears down all live subscriptions.
func (b *RedisBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var err error
	for key, sub := range b.subs {
		if cerr := sub.Close(); cerr != nil && err == nil {
			err = cerr
		}
		delete(b.subs, key)
	}
	return err
}

// MessagingProvider serves messaging capability invocations against a
// Broker, enforcing topic-scoped permissions.
type MessagingProvider struct {
	broker Broker
}

// NewMessagingProvider returns a provider over the given broker.
func NewMessagingProvider(broker Broker) *MessagingProvider {
	return &MessagingProvider{broker: broker}
}

func (p *MessagingProvider) Type() core.ProviderType { return core.ProviderMessaging }

func (p *MessagingProvider) Invoke(ctx context.Context, inv Invocation) (map[string]any, error) {
	topic, err := stringParam(inv.Params, "topic")
	if err != nil {
		return nil, err
	}

	switch inv.Operation {
	case "publish":
		if err := checkTopicScope(inv.Permissions, core.PermPublish, topic); err != nil {
			return nil, err
		}
		message, err := stringParam(inv.Params, "message")
		if err != nil {
			return nil, err
		}
		if err := p.broker.Publish(ctx, topic, message); err != nil {
			return nil, err
		}
		return map[string]any{"published": true, "topic": topic}, nil

	case "subscribe":
		if err := checkTopicScope(inv.Permissions, core.PermSubscribe, topic); err != nil {
			return nil, err
		}
		if err := p.broker.Subscribe(ctx, inv.InstanceID, topic); err != nil {
			return nil, err
		}
		return map[string]any{"subscribed": true, "topic": topic}, nil

	case "unsubscribe":
		if err := checkTopicScope(inv.Permissions, core.PermSubscribe, topic); err != nil {
			return nil, err
		}
		if err := p.broker.Unsubscribe(ctx, inv.InstanceID, topic); err != nil {
			return nil, err
		}
		return map[string]any{"unsubscribed": true, "topic": topic}, nil

	default:
		return nil, &UnknownOperationError{Provider: core.ProviderMessaging, Operation: inv.Operation}
	}
}

// checkTopicScope allows the operation when the permission list carries the
// bare permission or the topic-scoped form.
func checkTopicScope(permissions []string, base, topic string) error {
	for _, perm := range permissions {
		if perm == base || perm == base+":"+topic {
			return nil
		}
	}
	return fmt.Errorf("missing %s permission for topic %q", base, topic)
}
