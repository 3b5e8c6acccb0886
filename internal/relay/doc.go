/*
Package relay hosts the authoritative diagram and fans every mutation out to
the connected participants.

# Why Relay Package Exists

Participants never talk to each other directly. Each one sends its local
changes to the relay, which applies them to the one authoritative graph and
forwards the identical event to every other participant. The relay never
sends an event back to the participant it came from.

# Single Writer

Hub.Run is the only goroutine that touches the authoritative graph. Joins,
leaves and submitted events are handed to it over a channel and processed one
at a time, so an event is applied and forwarded before the next one is
looked at. Events from one connection are submitted in the order they
arrived, which preserves per-connection FIFO.

# Tolerance

Events that address unknown ids are applied as no-ops and still forwarded.
Events that cannot be decoded are logged, counted and dropped. A failed send
to one participant is logged and counted; nothing else is affected. The relay
does not re-check links for cycles.
*/
package relay
