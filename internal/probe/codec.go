package probe

import (
	"encoding/json"

	"gosniff/internal/model"
)

// Records travel as JSON. The wire shape is the record's export shape, so a
// subscriber on any host can also feed captured streams straight to files.

func encodeRecord(rec *model.PacketRecord) ([]byte, error) {
	return json.Marshal(rec)
}

func decodeRecord(data []byte) (*model.PacketRecord, error) {
	var rec model.PacketRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
