package models

import (
	"time"

	"emby-tagger/core/utils"
)

// LocalItem is the user's canonical catalog entry. Tags, comments and
// ratings hang off it and survive remapping.
type LocalItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Title         string          `gorm:"size:512;not null;index" json:"title"`
	OriginalTitle string          `gorm:"size:512" json:"originalTitle,omitempty"`
	Overview      string          `gorm:"type:text" json:"overview,omitempty"`
	Type          string          `gorm:"size:32;index" json:"type"`
	PremiereDate  *time.Time      `json:"premiereDate,omitempty"`
	ExternalIDs   utils.StringMap `gorm:"type:text" json:"externalIds"`
	Tags          []Tag           `gorm:"many2many:local_item_tags;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	Comments      []Comment       `gorm:"constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Rating        *Rating         `gorm:"constraint:OnDelete:CASCADE" json:"rating,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// MatchID implements reconcile.Entry, as do the Match methods below.
func (i LocalItem) MatchID() uint                       { return i.ID }
func (i LocalItem) MatchType() string                   { return i.Type }
func (i LocalItem) MatchTitle() string                  { return i.Title }
func (i LocalItem) MatchOriginalTitle() string          { return i.OriginalTitle }
func (i LocalItem) MatchExternalIDs() map[string]string { return i.ExternalIDs }

// RemoteItem is the mirror of one item on one remote server. LocalItemID is
// the mapping; a sync pass never writes it.
type RemoteItem struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	RemoteID        string           `gorm:"size:64;not null;uniqueIndex:idx_remote_server" json:"remoteId"`
	ServerID        uint             `gorm:"not null;uniqueIndex:idx_remote_server" json:"serverId"`
	Title           string           `gorm:"size:512;not null" json:"title"`
	OriginalTitle   string           `gorm:"size:512" json:"originalTitle,omitempty"`
	Overview        string           `gorm:"type:text" json:"overview,omitempty"`
	Type            string           `gorm:"size:32" json:"type"`
	PremiereDate    *time.Time       `json:"premiereDate,omitempty"`
	ProductionYear  int              `json:"productionYear,omitempty"`
	DateAdded       *time.Time       `json:"dateAdded,omitempty"`
	CommunityRating float64          `json:"communityRating,omitempty"`
	ExternalIDs     utils.StringMap  `gorm:"type:text" json:"externalIds"`
	Genres          utils.StringList `gorm:"type:text" json:"genres"`
	Studios         utils.StringList `gorm:"type:text" json:"studios"`
	Actors          utils.StringList `gorm:"type:text" json:"actors"`
	Directors       utils.StringList `gorm:"type:text" json:"directors"`
	Path            string           `gorm:"size:1024" json:"path,omitempty"`
	PosterTag       string           `gorm:"size:64" json:"posterTag,omitempty"`
	LocalItemID     *uint            `gorm:"index" json:"localItemId,omitempty"`
	LocalItem       *LocalItem       `gorm:"constraint:OnDelete:SET NULL" json:"localItem,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// MatchID implements reconcile.Entry, as do the Match methods below.
func (i RemoteItem) MatchID() uint                       { return i.ID }
func (i RemoteItem) MatchType() string                   { return i.Type }
func (i RemoteItem) MatchTitle() string                  { return i.Title }
func (i RemoteItem) MatchOriginalTitle() string          { return i.OriginalTitle }
func (i RemoteItem) MatchExternalIDs() map[string]string { return i.ExternalIDs }

// IsMapped reports whether the item is linked to a local item.
func (i RemoteItem) IsMapped() bool {
	return i.LocalItemID != nil
}

// RemoteServer is a configured Emby server. At most one is active.
type RemoteServer struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:128;not null" json:"name"`
	URL         string       `gorm:"size:512;not null" json:"url"`
	APIKey      string       `gorm:"size:128;not null" json:"apiKey"`
	IsActive    bool         `gorm:"not null;default:false;index" json:"isActive"`
	RemoteID    string       `gorm:"size:64" json:"remoteId,omitempty"`
	RemoteItems []RemoteItem `gorm:"foreignKey:ServerID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Tag is a label attached to local items.
type Tag struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:191;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"size:512" json:"description,omitempty"`
	Group       string    `gorm:"column:group_name;size:64;index" json:"group,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Comment is a free-form note on a local item.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	LocalItemID uint      `gorm:"not null;index" json:"localItemId"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Rating is the user's score for a local item.
type Rating struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	LocalItemID uint      `gorm:"not null;uniqueIndex" json:"localItemId"`
	Score       float64   `gorm:"not null" json:"score"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LocalItemTagsTable is the join table between local items and tags.
const LocalItemTagsTable = "local_item_tags"

// All returns every model in migration order.
func All() []any {
	return []any{
		&RemoteServer{},
		&Tag{},
		&LocalItem{},
		&RemoteItem{},
		&Comment{},
		&Rating{},
	}
}
