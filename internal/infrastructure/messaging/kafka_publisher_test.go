package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/messaging"
)

func sampleEvent() inventory.MovementEvent {
	return inventory.MovementEvent{
		EventType:          inventory.EventTypeMovementRecorded,
		MovementID:         "mov-1",
		MaterialID:         "mat-1",
		MaterialName:       "Cabo HDMI",
		Tipo:               "saida",
		Quantidade:         3,
		Tecnico:            "Ana",
		QuantidadeAnterior: 7,
		QuantidadeAtual:    4,
		EstoqueMinimo:      5,
		Status:             "Baixo",
		AlertaEstoqueBaixo: true,
		DataHora:           time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisher_PublishMovement(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	defer func() { _ = producer.Close() }()

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "movs" {
			return errors.New("tópico inesperado: " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "mat-1" {
			return errors.New("la clave debe ser el materialId")
		}
		raw, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var got map[string]any
		if err := json.Unmarshal(raw, &got); err != nil {
			return err
		}
		if got["alertaEstoqueBaixo"] != true || got["quantidadeAtual"] != float64(4) {
			return errors.New("payload inesperado")
		}
		return nil
	})

	p := messaging.NewKafkaPublisherWithProducer(producer, "movs", nil)
	require.NoError(t, p.PublishMovement(context.Background(), sampleEvent()))
}

func TestKafkaPublisher_ErrorDelBroker(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	defer func() { _ = producer.Close() }()
	producer.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)

	p := messaging.NewKafkaPublisherWithProducer(producer, "movs", nil)
	err := p.PublishMovement(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, sarama.ErrNotLeaderForPartition)
}
