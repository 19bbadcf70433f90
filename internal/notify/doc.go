// Package notify fans scheduler engine lifecycle events out to observers.
//
// Two channels are supported:
//
//   - Bus, a typed in-process publish/subscribe channel. The CLI's serve
//     command subscribes to this to log a one-line summary per fire.
//   - NATSPublisher, an optional best-effort forwarder to a NATS subject,
//     active only when the configuration's notify.nats_url is non-empty.
//
// Neither channel is durable and neither is a substitute for the task
// store's persisted schedule state; both exist purely to let an external
// observer watch fires happen without polling the store.
package notify
