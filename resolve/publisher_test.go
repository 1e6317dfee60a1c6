package resolve

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publishResult() *Result {
	return &Result{
		Table: []Candidate{
			{NodeID: "SWEETWN2", Lat: 32.3812, Lon: -100.4251, PlantName: "Sweetwater 2 Wind Farm", Method: MethodControl},
			{NodeID: "ANSON1", Lat: 32.75, Lon: -99.89, PlantName: "Anson", Method: MethodFuzzy, Score: 0.92},
		},
		Unmatched:       []Node{{ID: "NOMATCH"}},
		UnclaimedPlants: []Plant{{Name: "Hanson"}},
		Calibration:     &Calibration{ControlPoints: 40, MeanErrorKm: 2.5, MaxErrorKm: 8.1},
	}
}

func TestPublisher_PublishResult(t *testing.T) {
	client := NewMockClient()
	publisher := NewPublisher(client, "test/nodemap")

	err := publisher.PublishResult(publishResult())
	require.NoError(t, err)

	messages := client.GetPublishedMessages()
	require.Len(t, messages, 2)

	summary := messages[0]
	assert.Equal(t, "test/nodemap/summary", summary.Topic)
	assert.Equal(t, byte(1), summary.QoS)
	assert.True(t, summary.Retain, "late subscribers must get the latest table")

	var decoded RunSummary
	require.NoError(t, json.Unmarshal(summary.Payload, &decoded))
	assert.Equal(t, 2, decoded.Matched)
	assert.Equal(t, 1, decoded.Unmatched)
	assert.Equal(t, 1, decoded.UnclaimedPlants)
	assert.Equal(t, 1, decoded.ByMethod[MethodControl])
	assert.Equal(t, 1, decoded.ByMethod[MethodFuzzy])
	require.NotNil(t, decoded.Calibration)
	assert.Equal(t, 40, decoded.Calibration.ControlPoints)
	assert.NotZero(t, decoded.Timestamp)

	coords := messages[1]
	assert.Equal(t, "test/nodemap/coordinates", coords.Topic)

	var fc map[string]interface{}
	require.NoError(t, json.Unmarshal(coords.Payload, &fc))
	assert.Equal(t, "FeatureCollection", fc["type"])
	features, ok := fc["features"].([]interface{})
	require.True(t, ok)
	assert.Len(t, features, 2)
}

func TestPublisher_DefaultPrefix(t *testing.T) {
	client := NewMockClient()
	publisher := NewPublisher(client, "")

	require.NoError(t, publisher.PublishResult(publishResult()))

	messages := client.GetPublishedMessages()
	require.Len(t, messages, 2)
	assert.Equal(t, "nodemap/summary", messages[0].Topic)
	assert.Equal(t, "nodemap/coordinates", messages[1].Topic)
}

func TestPublisher_NilClientIsNoop(t *testing.T) {
	publisher := NewPublisher(nil, "")
	assert.NoError(t, publisher.PublishResult(publishResult()))
}

func TestPublisher_NotConnected(t *testing.T) {
	client := NewMockClient()
	client.SetConnected(false)
	publisher := NewPublisher(client, "")

	err := publisher.PublishResult(publishResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestPublisher_PublishError(t *testing.T) {
	client := NewMockClient()
	client.SetPublishError(errors.New("broker rejected message"))
	publisher := NewPublisher(client, "")

	err := publisher.PublishResult(publishResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker rejected message")
}
