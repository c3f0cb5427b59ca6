package archive

import (
	"time"

	"github.com/eleven-am/auteur/internal/lens"
	"github.com/eleven-am/auteur/internal/shared"
	"github.com/eleven-am/auteur/internal/vision"
)

type Record struct {
	ID         string                          `gorm:"primaryKey" json:"id"`
	SessionID  string                          `gorm:"not null;index" json:"session_id"`
	Source     string                          `gorm:"index" json:"source"`
	Lens       lens.Mode                       `gorm:"not null" json:"lens"`
	Analysis   string                          `json:"analysis"`
	Score      int                             `gorm:"not null" json:"score"`
	Overlays   shared.JSONList[vision.Overlay] `json:"overlays"`
	Timestamp  int64                           `gorm:"not null;index" json:"timestamp"`
	CapturedAt time.Time                       `json:"captured_at"`
	CreatedAt  time.Time                       `json:"created_at"`
}

func NewRecord(sessionID, source string, ins vision.Insight) *Record {
	return &Record{
		SessionID:  sessionID,
		Source:     source,
		Lens:       ins.Lens,
		Analysis:   ins.Data.Analysis,
		Score:      ins.Data.Score,
		Overlays:   shared.JSONList[vision.Overlay](ins.Data.Overlays),
		Timestamp:  ins.Timestamp,
		CapturedAt: time.UnixMilli(ins.Timestamp).UTC(),
	}
}
