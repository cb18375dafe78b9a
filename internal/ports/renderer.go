package ports

import (
	"io"

	"pipeline-profile-service/internal/domain"
)

// Downstream collaborator that turns a built profile into a drawing.
type ProfileRenderer interface {
	// Formats the renderer can write, e.g. "png", "svg", "html".
	Formats() []string
	Render(w io.Writer, res *domain.ProfileResult, format string) error
}
