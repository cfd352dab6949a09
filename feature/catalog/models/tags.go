package models

import "fmt"

const (
	actorTagPrefix    = "演员: "
	directorTagPrefix = "导演: "
	studioTagPrefix   = "片商: "
)

// ActorTag returns the tag name for an actor.
func ActorTag(name string) string { return actorTagPrefix + name }

// DirectorTag returns the tag name for a director.
func DirectorTag(name string) string { return directorTagPrefix + name }

// StudioTag returns the tag name for a studio.
func StudioTag(name string) string { return studioTagPrefix + name }

// PersonTags returns the tag names auto-tagging materializes for a remote
// item: actors, then directors, then studios.
func (i RemoteItem) PersonTags() []string {
	names := make([]string, 0, len(i.Actors)+len(i.Directors)+len(i.Studios))
	for _, a := range i.Actors {
		names = append(names, ActorTag(a))
	}
	for _, d := range i.Directors {
		names = append(names, DirectorTag(d))
	}
	for _, s := range i.Studios {
		names = append(names, StudioTag(s))
	}
	return names
}

// String identifies the item in logs.
func (i RemoteItem) String() string {
	return fmt.Sprintf("%s (%s, server %d)", i.Title, i.RemoteID, i.ServerID)
}
