package recon

import (
	"context"

	"rawdb/internal/model"
)

// InventoryStatus summarizes one inventory.
type InventoryStatus struct {
	Side         model.Side
	Records      int
	Bytes        int64
	WithChecksum int
	WithDate     int
	Saved        int // camera only
}

// Status returns a summary of both inventories.
func (s *Service) Status(ctx context.Context) ([]InventoryStatus, error) {
	var statuses []InventoryStatus
	for _, side := range []model.Side{model.Disk, model.Camera} {
		records, err := s.store.ReadInventory(ctx, side)
		if err != nil {
			return nil, err
		}
		st := InventoryStatus{Side: side, Records: len(records)}
		for i := range records {
			st.Bytes += records[i].Size
			if records[i].Checksum.Valid {
				st.WithChecksum++
			}
			if records[i].Date.Valid {
				st.WithDate++
			}
			if records[i].Saved {
				st.Saved++
			}
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}
