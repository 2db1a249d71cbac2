// Package model defines the wire frames exchanged with the dashboard
// backend over the realtime WebSocket channels.
//
// Conventions:
//   - Every frame is a JSON object with a "type" discriminator field.
//   - Symbols: 6-digit numeric strings are KRX codes ("005930"), anything
//     else is treated as a US ticker ("AAPL").
//   - Timestamps: server-formatted strings, passed through opaquely.
package model
