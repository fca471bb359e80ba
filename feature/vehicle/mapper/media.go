package mapper

import (
	"vehicle-sync/core/syscara"
)

// MediaCache bundles the media ids of a listing. It is serialized into the
// media-cache field as {"hauptbild":..,"galerie":[..],"grundriss":..}.
type MediaCache struct {
	MainImage *syscara.ID  `json:"hauptbild"`
	Gallery   []syscara.ID `json:"galerie"`
	FloorPlan *syscara.ID  `json:"grundriss"`
}

// BucketMedia partitions media by group. Images keep their order and are capped at
// galleryMax; the first image is the main image; the first layout entry is the
// floor plan. The input is not modified.
func BucketMedia(media []syscara.Media, galleryMax int) MediaCache {
	cache := MediaCache{Gallery: []syscara.ID{}}
	for _, m := range media {
		if m.ID == "" {
			continue
		}
		switch m.Group {
		case syscara.MediaGroupImage:
			if galleryMax <= 0 || len(cache.Gallery) < galleryMax {
				cache.Gallery = append(cache.Gallery, m.ID)
			}
		case syscara.MediaGroupLayout:
			if cache.FloorPlan == nil {
				id := m.ID
				cache.FloorPlan = &id
			}
		}
	}
	if len(cache.Gallery) > 0 {
		main := cache.Gallery[0]
		cache.MainImage = &main
	}
	return cache
}
