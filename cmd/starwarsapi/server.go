package main

import (
	"net/http"

	"github.com/redis/go-redis/v9"

	"starwarsapi/internal/app/catalog"
	"starwarsapi/internal/app/favorites"
	"starwarsapi/internal/app/users"
	"starwarsapi/internal/auth"
	"starwarsapi/internal/cache"
	"starwarsapi/internal/config"
	"starwarsapi/internal/http/middleware"
	"starwarsapi/internal/httpapi"
	"starwarsapi/internal/store"
)

func newHTTPHandler(cfg *config.Config, dataStore *store.Store, rdb *redis.Client) http.Handler {
	tokens := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	catalogReader := cache.NewCatalog(dataStore, rdb, cfg.Cache.TTL)

	userSvc := users.New(dataStore, tokens)
	catalogSvc := catalog.New(catalogReader)
	favoritesSvc := favorites.New(dataStore, catalogReader)

	var handler http.Handler = httpapi.New(userSvc, catalogSvc, favoritesSvc).Routes()
	handler = middleware.CORS(cfg.CORS.AllowedOrigins)(handler)
	handler = middleware.Recovery()(handler)
	handler = middleware.RequestLogging()(handler)
	return handler
}
