// Package push turns inbound push-message payloads into rendered, interactive
// notifications.
//
// The pipeline run by Service.HandleMessage is:
//
//	payload -> DELIVERED reported -> SelectStyle -> 0..2 concurrent image fetches
//	        -> Plan.Finalize -> Builder.Render on the render loop -> Surface.Show
//
// Image failures never reach the caller; the style degrades to a layout
// without the missing image. Rendering is confined to one async.Loop so a
// Surface never sees concurrent calls.
//
// User interaction comes back as an Event. ClickReceiver opens the deep link
// through a Launcher and reports CLICKED; DismissReceiver reports DISMISSED.
// Both are stateless and safe to call from any goroutine.
//
// Surfaces:
//
//   - MemorySurface records notifications, for tests and polling hosts.
//   - StreamSurface publishes notifications and launch intents to subscribers
//     and doubles as a Launcher.
//
// Example:
//
//	surface := push.NewStreamSurface()
//	builder, err := push.NewBuilder(surface, push.BuilderConfig{SmallIcon: "ic_stat_bell"})
//	if err != nil {
//		return err
//	}
//	svc, err := push.NewService(reporter, loader, builder, push.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer svc.Close(context.Background())
//
//	err = svc.HandleMessage(ctx, push.Payload{
//		push.KeyNotificationID: "abc",
//		push.KeyTitle:          "Hi",
//		push.KeyBigPicture:     "https://cdn.example.com/banner.png",
//	})
package push
