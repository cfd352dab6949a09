package catalog

import (
	"context"
	"fmt"
	"slices"

	"emby-tagger/core/emby"
	"emby-tagger/core/utils"
	"emby-tagger/feature/catalog/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// mirrorColumns are overwritten on every upsert. local_item_id is absent:
// a sync pass never changes a mapping.
var mirrorColumns = []string{
	"title", "original_title", "overview", "type", "premiere_date",
	"production_year", "date_added", "community_rating", "external_ids",
	"genres", "studios", "actors", "directors", "path", "poster_tag",
	"updated_at",
}

// bindChunk bounds the ids bound in one IN clause, well under SQLite's
// variable limit.
var bindChunk = 500

// Mirror keeps the local copy of a remote server's catalog.
type Mirror struct {
	db *gorm.DB
}

// NewMirror creates a mirror over the given database.
func NewMirror(db *gorm.DB) *Mirror {
	return &Mirror{db: db}
}

// Upsert creates or refreshes the mirror row of one remote item and returns
// the stored row.
func (m *Mirror) Upsert(ctx context.Context, serverID uint, item emby.Item) (*models.RemoteItem, error) {
	row := fromRemote(serverID, item)

	db := m.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "remote_id"}, {Name: "server_id"}},
		DoUpdates: clause.AssignmentColumns(mirrorColumns),
	}).Omit("LocalItem").Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert remote item %s: %w", item.ID, err)
	}

	// The id reported by an upsert that hit the conflict branch is not portable.
	var stored models.RemoteItem
	if err := db.Where("remote_id = ? AND server_id = ?", item.ID, serverID).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to reload remote item %s: %w", item.ID, err)
	}
	return &stored, nil
}

// PruneMissing deletes the rows of a server whose remote id is not in
// surviving. An empty set deletes every row of the server.
func (m *Mirror) PruneMissing(ctx context.Context, serverID uint, surviving []string) (int64, error) {
	db := m.db.WithContext(ctx)
	if len(surviving) == 0 {
		res := db.Where("server_id = ?", serverID).Delete(&models.RemoteItem{})
		if res.Error != nil {
			return 0, fmt.Errorf("failed to prune remote items: %w", res.Error)
		}
		return res.RowsAffected, nil
	}

	var rows []models.RemoteItem
	if err := db.Select("id", "remote_id").Where("server_id = ?", serverID).Find(&rows).Error; err != nil {
		return 0, fmt.Errorf("failed to list remote items: %w", err)
	}

	keep := make(map[string]struct{}, len(surviving))
	for _, id := range surviving {
		keep[id] = struct{}{}
	}
	var stale []uint
	for _, r := range rows {
		if _, ok := keep[r.RemoteID]; !ok {
			stale = append(stale, r.ID)
		}
	}

	var pruned int64
	for batch := range slices.Chunk(stale, bindChunk) {
		res := db.Where("id IN ?", batch).Delete(&models.RemoteItem{})
		if res.Error != nil {
			return pruned, fmt.Errorf("failed to prune remote items: %w", res.Error)
		}
		pruned += res.RowsAffected
	}
	return pruned, nil
}

// fromRemote maps an Emby item onto a mirror row.
func fromRemote(serverID uint, item emby.Item) models.RemoteItem {
	original := item.OriginalTitle
	if original == "" {
		original = item.Name
	}

	premiere := item.Premiere()
	year := item.ProductionYear
	if year == 0 && premiere != nil {
		year = premiere.Year()
	}

	ids := utils.StringMap{}
	for k, v := range item.ProviderIds {
		if v != "" {
			ids[k] = v
		}
	}

	return models.RemoteItem{
		RemoteID:        item.ID,
		ServerID:        serverID,
		Title:           item.Name,
		OriginalTitle:   original,
		Overview:        item.Overview,
		Type:            item.Type,
		PremiereDate:    premiere,
		ProductionYear:  year,
		DateAdded:       item.Created(),
		CommunityRating: item.CommunityRating,
		ExternalIDs:     ids,
		Genres:          nonNil(item.Genres),
		Studios:         item.StudioNames(),
		Actors:          item.PeopleOfType(emby.PersonActor),
		Directors:       item.PeopleOfType(emby.PersonDirector),
		Path:            item.Path,
		PosterTag:       item.ImageTags["Primary"],
	}
}

func nonNil(list []string) utils.StringList {
	if list == nil {
		return utils.StringList{}
	}
	return utils.StringList(list)
}
