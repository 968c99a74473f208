// Package httpserver runs the API's http.Server with graceful shutdown and
// exposes a JSON health endpoint.
//
//	srv := httpserver.New(cfg.HTTP, log)
//	router.Get("/health", httpserver.HealthCheckHandler(log,
//	    httpserver.Check{Name: "store", Probe: store.Ping},
//	))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server failed", logger.Error(err))
//	}
package httpserver
