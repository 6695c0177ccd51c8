// Package datacache persists the loader data a navigator has committed, so a
// restarted server (or another replica) can resume client transitions that
// reuse it.
//
// Two backends are provided: MemoryStore for a single process and RedisStore
// for deployments that share state through Redis.
//
//	store := datacache.NewRedisStore("localhost:6379", "", 0,
//	    datacache.WithTTL(30*time.Minute))
//	nav := navigation.New(runner, navigation.WithStore(store, sessionID))
package datacache
