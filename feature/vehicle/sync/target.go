package sync

import (
	"context"

	"vehicle-sync/core/syscara"
	"vehicle-sync/core/webflow"
)

// Source loads the full listing collection.
type Source interface {
	FetchAll(ctx context.Context) ([]syscara.Entry, error)
}

// Target is the part of the CMS client the sync writes through.
type Target interface {
	ListItems(ctx context.Context, collection string) ([]webflow.Item, error)
	CreateItem(ctx context.Context, collection string, fields map[string]any) (webflow.Item, error)
	UpdateItem(ctx context.Context, collection, id string, fields map[string]any) (webflow.Item, error)
	DeleteItem(ctx context.Context, collection, id string) error
	PublishItems(ctx context.Context, collection string, ids []string) error
	UnpublishLiveItem(ctx context.Context, collection, id string) error
}

// collectionMutator writes vehicle records into one collection.
type collectionMutator struct {
	target     Target
	collection string
}

func (m *collectionMutator) Create(ctx context.Context, fields map[string]any) (string, error) {
	item, err := m.target.CreateItem(ctx, m.collection, fields)
	if err != nil {
		return "", err
	}
	return item.ID, nil
}

func (m *collectionMutator) Update(ctx context.Context, id string, fields map[string]any) error {
	_, err := m.target.UpdateItem(ctx, m.collection, id, fields)
	return err
}

// Delete takes the item off the live site before removing it.
func (m *collectionMutator) Delete(ctx context.Context, id string) error {
	if err := m.target.UnpublishLiveItem(ctx, m.collection, id); err != nil {
		return err
	}
	return m.target.DeleteItem(ctx, m.collection, id)
}

// publishingMutator also publishes every write.
type publishingMutator struct {
	collectionMutator
}

func (m *publishingMutator) Publish(ctx context.Context, ids []string) error {
	return m.target.PublishItems(ctx, m.collection, ids)
}
