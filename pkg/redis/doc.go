// Package redis connects to Redis with go-redis and provides a shared
// organization cache for the tenant middleware.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	cache := redis.NewOrganizationCache(client, cfg.KeyPrefix, log)
//	mw := tenant.Middleware(store, tenant.WithCache(cache, 5*time.Minute))
package redis
