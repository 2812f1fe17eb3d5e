package gameerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"

	"github.com/cory-johannsen/herobound/internal/game/gameerr"
)

func TestHelpers_MatchThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", gameerr.NotFound("monster", "goblin"))
	assert.True(t, gameerr.IsNotFound(wrapped))
	assert.False(t, gameerr.IsPrecondition(wrapped))

	var nf *gameerr.NotFoundError
	assert.True(t, errors.As(wrapped, &nf))
	assert.Equal(t, "monster", nf.Kind)
	assert.Equal(t, "goblin", nf.ID)
	assert.Equal(t, `monster "goblin" not found`, nf.Error())
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "battle: precondition violated: hero is dead",
		gameerr.Precondition("battle", "%s is dead", "hero").Error())
	assert.Equal(t, `hero 3 already has quest "q1" active`,
		(&gameerr.DuplicateActiveQuestError{HeroID: 3, QuestID: "q1"}).Error())
	assert.Equal(t, `hero 3 has no active quest "q1"`,
		(&gameerr.NoActiveQuestError{HeroID: 3, QuestID: "q1"}).Error())
	assert.Equal(t, "battle stalemate after 10 rounds",
		(&gameerr.StalemateError{Rounds: 10}).Error())
}

func TestGRPCCode(t *testing.T) {
	cases := map[error]codes.Code{
		nil:                                  codes.OK,
		gameerr.NotFound("quest", "x"):       codes.NotFound,
		gameerr.Precondition("op", "r"):      codes.FailedPrecondition,
		&gameerr.NoActiveQuestError{}:        codes.FailedPrecondition,
		&gameerr.DuplicateActiveQuestError{}: codes.AlreadyExists,
		&gameerr.StalemateError{}:            codes.Aborted,
		errors.New("boom"):                   codes.Internal,
	}
	for err, want := range cases {
		assert.Equal(t, want, gameerr.GRPCCode(err), "%v", err)
	}
}
