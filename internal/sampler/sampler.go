package sampler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/etongue-project/etongue/internal/model/entities"
	"github.com/etongue-project/etongue/internal/model/messages"
	"github.com/etongue-project/etongue/pkg/hal"
	"github.com/etongue-project/etongue/pkg/mqtt"
)

// ReportInterval is the fixed cadence between records. It is part of the
// station's contract with downstream consumers, not a tunable.
const ReportInterval = 1000 * time.Millisecond

// Sampler runs the station's read-convert-emit cycle: one LDR analog read,
// one LDR threshold read and one pH probe read per cycle, serialized as a
// single text line on the reporting link.
type Sampler struct {
	station   entities.Station
	board     hal.Board
	out       io.Writer
	publisher mqtt.IPublisher // optional MQTT mirror
}

// New builds a Sampler for station, reading board and writing records to
// out (usually the serial port).
func New(station entities.Station, board hal.Board, out io.Writer) *Sampler {
	return &Sampler{station: station, board: board, out: out}
}

// SetPublisher attaches an optional publisher that mirrors every record to
// the broker.
func (s *Sampler) SetPublisher(p mqtt.IPublisher) { s.publisher = p }

// Cycle performs one full acquisition pass and returns the record.
// Raw values are converted as-is; a disconnected probe yields whatever the
// ADC reports, never an error (the device contract is silent failure).
func (s *Sampler) Cycle() (messages.SampleRecord, error) {
	ldrRaw, err := s.board.ReadAnalog(s.station.LDRAnalog)
	if err != nil {
		return messages.SampleRecord{}, fmt.Errorf("read %s: %w", s.station.LDRAnalog, err)
	}
	ldrDig, err := s.board.ReadDigital(s.station.LDRDigital)
	if err != nil {
		return messages.SampleRecord{}, fmt.Errorf("read %s: %w", s.station.LDRDigital, err)
	}
	phRaw, err := s.board.ReadAnalog(s.station.PHAnalog)
	if err != nil {
		return messages.SampleRecord{}, fmt.Errorf("read %s: %w", s.station.PHAnalog, err)
	}

	return messages.SampleRecord{
		LDRAnalog:  Voltage(ldrRaw),
		LDRDigital: ldrDig,
		PH:         PHFromVoltage(Voltage(phRaw)),
	}, nil
}

// Run emits one record immediately, then one per ReportInterval until ctx
// is cancelled. Read failures are logged and the cycle skipped; the loop
// itself never terminates on its own.
func (s *Sampler) Run(ctx context.Context) error {
	return s.run(ctx, ReportInterval)
}

func (s *Sampler) run(ctx context.Context, interval time.Duration) error {
	s.emit()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if s.publisher != nil {
				s.publisher.Close()
			}
			return ctx.Err()
		case <-ticker.C:
			s.emit()
		}
	}
}

func (s *Sampler) emit() {
	rec, err := s.Cycle()
	if err != nil {
		log.Printf("sampler %s: cycle error: %v", s.station.ID, err)
		return
	}

	if _, err := io.WriteString(s.out, rec.Line()); err != nil {
		log.Printf("sampler %s: serial write error: %v", s.station.ID, err)
	}

	if s.publisher != nil {
		payload, _ := json.Marshal(rec)
		if err := s.publisher.Publish(payload); err != nil {
			log.Printf("sampler %s: publish error: %v", s.station.ID, err)
		}
	}
}
