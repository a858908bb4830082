// Package pushkit assembles the push notification pipeline from configuration.
//
// Kit wires the packages under pkg/ into a running service: image loading
// (HTTP, S3, cache), status reporting (HTTP reporter behind an async worker,
// device tokens in memory or Redis), the push.Service pipeline rendering to a
// stream surface, click and dismiss receivers, Prometheus metrics and the HTTP
// transport.
//
// Minimal program:
//
//	func main() {
//		var cfg pushkit.Config
//		config.MustLoad(&cfg)
//
//		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//		defer stop()
//
//		kit, err := pushkit.New(ctx, cfg)
//		if err != nil {
//			log.Fatal(err)
//		}
//		if err := kit.Run(ctx); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// Every part can be replaced through options, e.g. WithSurface for a native
// display surface or WithReporter for a custom status backend.
package pushkit
