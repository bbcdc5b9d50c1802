package di

import (
	"ytmeta/internal/providers"
	"ytmeta/internal/services"
)

func storeStats(service services.HistoryServiceInterface) providers.StoreStats {
	return service
}
