package gatherer

import (
	"encoding/json"
	"log/slog"

	"github.com/programme-lv/kernval/api"
	"github.com/programme-lv/kernval/internal"
)

// Publisher delivers one encoded message.
type Publisher interface {
	Publish(body []byte) error
}

// Stream turns run events into api stream messages for a Publisher.
// Delivery failures are logged and never interrupt the run.
type Stream struct {
	runID  string
	pub    Publisher
	logger *slog.Logger
	tally  Tally
}

var _ internal.ResultGatherer = (*Stream)(nil)

func NewStream(runID string, pub Publisher, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream{runID: runID, pub: pub, logger: logger}
}

func (s *Stream) send(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to marshal message", "err", err)
		return
	}
	if err := s.pub.Publish(b); err != nil {
		s.logger.Warn("failed to publish message", "err", err)
	}
}

func (s *Stream) StartRun(info internal.RunInfo) {
	s.tally.Start(info)
	s.send(api.NewStartRun(s.runID, info.Board, int(info.DType), info.Accuracy, info.PlanID, info.Cases))
}

func (s *Stream) StartCompile() {
	s.send(api.NewStartCompile(s.runID))
}

func (s *Stream) FinishCompile(data []*internal.RunData) {
	s.send(api.NewFinishCompile(s.runID, ToSteps(data, true)))
}

func (s *Stream) CompileError(msg string) {
	s.tally.CompileError = &msg
}

func (s *Stream) ReachCase(c internal.TestCase) {
	s.send(api.NewReachCase(s.runID, c.ID))
}

func (s *Stream) FinishCase(res internal.ExecutionResult) {
	s.tally.Add(res)
	s.send(api.NewFinishCase(s.runID, ToCaseResult(res, true)))
}

func (s *Stream) Degraded(msg string) {
	s.tally.Degraded = &msg
}

func (s *Stream) FinishRun() {
	s.send(api.FinishRun{
		Header:       api.NewHeader(s.runID, api.FinishRunMsg),
		Status:       s.tally.Status(),
		Total:        s.tally.Total,
		Passed:       s.tally.Passed,
		Failed:       s.tally.Failed,
		CompileError: s.tally.CompileError,
		Degraded:     s.tally.Degraded,
	})
}
