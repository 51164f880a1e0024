// Package events carries domain events between request handling and
// background modules over an in-process watermill bus.
package events

import (
	"context"
	"encoding/json"

	"github.com/Luismorlan/coursehub/model"
	"github.com/Luismorlan/coursehub/relation"
	. "github.com/Luismorlan/coursehub/utils/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	TopicUserDeleted     = "topic.user_deleted"
	TopicRelationChanged = "topic.relation_changed"
)

/*

UserDeleted is published after a user document is removed.

UserID: the deleted user
Refs: the user's association lists at deletion time, keyed by relation. The
	cleanup of reverse references works from this snapshot because the user
	document is already gone.
*/
type UserDeleted struct {
	UserID string                          `json:"userId"`
	Refs   map[model.RelationKind][]string `json:"refs"`
}

// Bus is a thin typed facade over a gochannel pub/sub. For now the bus is
// in-process; a broker backed watermill Publisher can replace it without
// touching callers.
type Bus struct {
	pubsub *gochannel.GoChannel
}

func NewBus(logger watermill.LoggerAdapter) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer:            100,
				BlockPublishUntilSubscriberAck: false,
			},
			logger,
		),
	}
}

func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

func (b *Bus) PublishUserDeleted(ctx context.Context, evt UserDeleted) error {
	return b.publish(ctx, TopicUserDeleted, evt)
}

// RelationChanged forwards applied associations to observers on the bus. A
// failed publish is logged and otherwise ignored.
func (b *Bus) RelationChanged(ctx context.Context, change relation.Change) {
	if err := b.publish(ctx, TopicRelationChanged, change); err != nil {
		Log.WithFields(logrus.Fields{
			"relation": change.Relation,
			"op":       change.Op,
		}).WithError(err).Warn("fail to publish relation change")
	}
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}

func (b *Bus) publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "fail to encode %s event", topic)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	return b.pubsub.Publish(topic, msg)
}
