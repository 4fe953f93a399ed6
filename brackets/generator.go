package brackets

import (
	"context"

	"github.com/Dosada05/tournament-manager/models"
)

type GenerateBracketParams struct {
	TournamentID int
	// Players должны быть уже отсортированы по посеву (детерминированный
	// полный порядок обеспечивает вызывающая сторона).
	Players []models.TournamentPlayer
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error)

	GetName() string
}
