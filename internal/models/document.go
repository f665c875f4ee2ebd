package models

import "time"

// KeepExistingTitle is accepted as a title on update and resolves to the
// stored title.
const KeepExistingTitle = "KEEP_EXISTING_TITLE"

type Kind string

const (
	KindMarkdown Kind = "markdown"
	KindMarp     Kind = "marp"
)

func (k Kind) IsValid() bool {
	return k == KindMarkdown || k == KindMarp
}

type Document struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Kind      Kind      `json:"kind"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DocumentSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Kind      Kind      `json:"kind"`
	IsPublic  bool      `json:"is_public"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DocumentInfo struct {
	ID        string
	Title     string
	Kind      Kind
	IsPublic  bool
	IsOwner   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SaveRequest struct {
	ID       string
	Title    string
	Content  string
	Kind     Kind
	IsPublic bool
}

// Access is the mutation right a requester holds on a document.
type Access int

const (
	NoAccess Access = iota
	PublicContentOnlyAccess
	OwnerFullAccess
)

func (a Access) String() string {
	switch a {
	case OwnerFullAccess:
		return "owner"
	case PublicContentOnlyAccess:
		return "public_content_only"
	default:
		return "none"
	}
}

func AccessFor(doc *Document, requesterID string) Access {
	switch {
	case doc == nil:
		return NoAccess
	case doc.OwnerID == requesterID:
		return OwnerFullAccess
	case doc.IsPublic:
		return PublicContentOnlyAccess
	default:
		return NoAccess
	}
}
