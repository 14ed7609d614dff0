package battle

import (
	"time"

	"petbot/internal/common"

	"github.com/google/uuid"
)

// A pending challenge waiting for the challenged user to accept or deny
type Challenge struct {
	Id         uuid.UUID
	Challenger Participant
	Challenged Participant
	Message    MessageRef
	stopwatch  common.Stopwatch
}

func newChallenge(challenger Participant, challenged Participant, timeout time.Duration, now time.Time) *Challenge {
	c := &Challenge{
		Id:         uuid.New(),
		Challenger: challenger,
		Challenged: challenged,
		stopwatch:  common.NewStopwatch(timeout),
	}
	c.stopwatch.StartAt(now)
	return c
}

func (c *Challenge) expired(now time.Time) bool {
	stopped, _ := c.stopwatch.StoppedAt(now)
	return stopped
}
