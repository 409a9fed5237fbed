// Package mq 通过 Kafka 在多个实例之间转发挂件事件
// 浏览器的 WebSocket 可能连在任意实例上，事件先写入主题，再由每个实例各自消费并推送
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"navbar_social/internal/config"
	"navbar_social/internal/dto/respond"
	"navbar_social/pkg/errorx"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageWriter / messageReader 抽象 kafka-go 的读写端，便于测试替换
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// DeliverFunc 把消费到的事件交给本实例的 WebSocket 连接
type DeliverFunc func(sessionID string, data []byte)

// KafkaNotifier 挂件事件的 Kafka 发布与消费
type KafkaNotifier struct {
	writer messageWriter
	reader messageReader
}

// NewKafkaNotifier 根据配置创建读写端
// 每个实例使用独立且重启后不变的消费组，保证所有实例都能收到全部事件
func NewKafkaNotifier(conf config.KafkaConfig) *KafkaNotifier {
	timeout := conf.Timeout * time.Second
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(conf.HostPort),
		Topic:                  conf.ToastTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           timeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{conf.HostPort},
		Topic:          conf.ToastTopic,
		GroupID:        instanceGroupID(conf, os.Hostname),
		CommitInterval: timeout,
		StartOffset:    kafka.LastOffset,
	})
	return &KafkaNotifier{writer: writer, reader: reader}
}

// instanceGroupID 实例消费组：配置的 instanceId 优先，其次主机名
// 两者都拿不到时退化为随机 ID
func instanceGroupID(conf config.KafkaConfig, hostname func() (string, error)) string {
	instance := conf.InstanceID
	if instance == "" {
		if name, err := hostname(); err == nil && name != "" {
			instance = name
		}
	}
	if instance == "" {
		instance = uuid.NewString()
		zap.L().Warn("kafka instance id unavailable, using random consumer group", zap.String("instance", instance))
	}
	return conf.GroupID + "-" + instance
}

// Publish 写入一条事件，以会话 ID 作为消息 key 保证同一会话的事件有序
func (k *KafkaNotifier) Publish(ctx context.Context, evt respond.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeMQError, "encode event")
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.SessionID),
		Value: data,
	}); err != nil {
		return errorx.Wrapf(err, errorx.CodeMQError, "kafka write session %s", evt.SessionID)
	}
	return nil
}

// Run 持续消费事件直到 ctx 结束
// 单条消息解析失败只记录日志
func (k *KafkaNotifier) Run(ctx context.Context, deliver DeliverFunc) {
	for {
		msg, err := k.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				zap.L().Info("kafka toast consumer stopped")
				return
			}
			zap.L().Error("kafka read failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		var evt respond.Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			zap.L().Error("kafka event decode failed",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			continue
		}
		deliver(evt.SessionID, msg.Value)
	}
}

// Close 关闭读写端
func (k *KafkaNotifier) Close() {
	if err := k.writer.Close(); err != nil {
		zap.L().Error("close kafka writer", zap.Error(err))
	}
	if err := k.reader.Close(); err != nil {
		zap.L().Error("close kafka reader", zap.Error(err))
	}
}
