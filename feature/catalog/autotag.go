package catalog

import (
	"errors"
	"fmt"

	"emby-tagger/feature/catalog/models"

	"gorm.io/gorm"
)

const (
	groupGenre    = "genre"
	groupActor    = "actor"
	groupDirector = "director"
	groupStudio   = "studio"
)

// autoTag attaches the tags derived from a remote item to a local item.
// Genres only link tags that already exist; actors, directors and studios
// always get a tag, created on first use.
func autoTag(tx *gorm.DB, localItemID uint, remote models.RemoteItem) error {
	for _, genre := range remote.Genres {
		var tag models.Tag
		err := tx.Where("name = ?", genre).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to look up genre tag %q: %w", genre, err)
		}
		// Case-insensitive collations (MySQL default) match other spellings.
		if tag.Name != genre {
			continue
		}
		if err := attachTag(tx, localItemID, tag.ID); err != nil {
			return err
		}
	}

	named := make([]models.Tag, 0, len(remote.Actors)+len(remote.Directors)+len(remote.Studios))
	for _, a := range remote.Actors {
		named = append(named, models.Tag{Name: models.ActorTag(a), Group: groupActor})
	}
	for _, d := range remote.Directors {
		named = append(named, models.Tag{Name: models.DirectorTag(d), Group: groupDirector})
	}
	for _, s := range remote.Studios {
		named = append(named, models.Tag{Name: models.StudioTag(s), Group: groupStudio})
	}

	for _, want := range named {
		tag, err := findOrCreateTag(tx, want)
		if err != nil {
			return err
		}
		if err := attachTag(tx, localItemID, tag.ID); err != nil {
			return err
		}
	}
	return nil
}

func findOrCreateTag(tx *gorm.DB, want models.Tag) (*models.Tag, error) {
	var tag models.Tag
	err := tx.Where(models.Tag{Name: want.Name}).Attrs(models.Tag{Group: want.Group}).FirstOrCreate(&tag).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find or create tag %q: %w", want.Name, err)
	}
	return &tag, nil
}

// attachTag links a tag to a local item unless the link already exists.
func attachTag(tx *gorm.DB, localItemID, tagID uint) error {
	var count int64
	err := tx.Table(models.LocalItemTagsTable).
		Where("local_item_id = ? AND tag_id = ?", localItemID, tagID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check tag %d on local item %d: %w", tagID, localItemID, err)
	}
	if count > 0 {
		return nil
	}

	err = tx.Table(models.LocalItemTagsTable).Create(map[string]any{
		"local_item_id": localItemID,
		"tag_id":        tagID,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to attach tag %d to local item %d: %w", tagID, localItemID, err)
	}
	return nil
}
