// Package handlers provides the relay's HTTP handlers.
//
//   - ForwardHandler: relays chat completion requests to the upstream API
//   - UpstreamHealthHandler: reports upstream health seen by real calls
//
// Liveness, readiness and version probes live in telemetry/health.
//
// # Forwarding
//
// ForwardHandler runs these steps for each request and stops at the first
// failure:
//
//  1. OPTIONS answers 204 with the CORS preflight headers
//  2. methods other than POST answer 405 with Allow: POST
//  3. the body is parsed; absent means {}, malformed means 400
//  4. prompt or messages must be present, otherwise 400
//  5. the credential is resolved; missing means 500 and no upstream call
//  6. the upstream payload is built from the body and the defaults
//  7. the upstream is called once under the client's timeout
//  8. the upstream outcome is translated into the response
//
// Every response carries Access-Control-Allow-Origin: * and every body is
// JSON.
package handlers
