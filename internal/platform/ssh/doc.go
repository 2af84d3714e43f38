// Package ssh executes commands on the Minecraft host.
//
// Every remote interaction the bot performs (reading player data,
// listing and reading log files, running management scripts) goes
// through [Client.Run]. The client authenticates with a private key,
// verifies the host against a known_hosts file seeded into the container
// image at build time, and retries the dial with exponential backoff.
//
// Connections are established per call. Commands are short (cat, ls,
// zcat, script invocations) and infrequent, so a persistent connection
// would mostly sit idle and need keepalive plumbing.
package ssh
