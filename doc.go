// Package apnskit wires Apple push notifications into an HTTP application.
//
// An Application owns process-wide state in typed storage. Its APNS
// accessor keeps one lazily built connection pool per environment
// (Sandbox, Production); every Send borrows a connection for exactly one
// caller and hands it back, or drops it when the transport failed.
//
// Basic usage:
//
//	cfg, err := apns.LoadConfig(".env")
//	if err != nil {
//		return err
//	}
//
//	app := apnskit.New(
//		apnskit.WithLogger(logger.New(logger.WithService("push"))),
//		apnskit.WithPoolOptions(cfg.PoolOptions()...),
//	)
//	defer app.Shutdown()
//
//	conf, err := cfg.Configuration()
//	if err != nil {
//		return err
//	}
//	if err := app.APNS().SetConfiguration(conf); err != nil {
//		return err
//	}
//
//	_, err = app.APNS().Client(apns.Production).Send(ctx, apns.Notification{
//		DeviceToken: token,
//		Payload:     []byte(`{"aps":{"alert":"hello"}}`),
//	})
//
// Inside HTTP handlers, Middleware attaches a request scoped accessor whose
// clients log with the request id:
//
//	r := chi.NewRouter()
//	r.Use(apnskit.Middleware(app))
//	r.Post("/notify", func(w http.ResponseWriter, r *http.Request) {
//		client := apnskit.FromContext(r.Context()).Client(apns.Sandbox)
//		...
//	})
//
// Pool counters can be exported to Prometheus:
//
//	prometheus.MustRegister(pool.NewCollector("apns", app.APNS()))
package apnskit
