// Package signaling implements the call-signaling relay: a registry of live
// sessions and a broker that forwards opaque handshake payloads between them
// so two browsers can set up a direct peer connection.
//
// Clients speak JSON text frames over a websocket:
//
//	server -> client  {"type":"assigned-session","id":"<session id>"}
//	client -> server  {"type":"invite-call","to":"<id>","signal":{...},"name":"Ada"}
//	server -> client  {"type":"invite-call","from":"<id>","signal":{...},"name":"Ada"}
//	client -> server  {"type":"call-answered","to":"<id>","signal":{...}}
//	server -> client  {"type":"call-answered","from":"<id>","signal":{...}}
//	server -> client  {"type":"call-ended","from":"<id>"}
//	server -> client  {"type":"call-unreachable","to":"<id>"}   (optional)
//
// The relay never interprets signal payloads.
package signaling
