package downloads

import (
	"io"

	"mdexport/internal/models"
)

const pkg = "downloadsHandler/"

type TicketPeeker interface {
	Peek(session models.Session, fileName string) (models.Ticket, error)
}

type TicketRedeemer interface {
	Redeem(session models.Session, fileName string) (io.ReadCloser, models.Ticket, error)
}
