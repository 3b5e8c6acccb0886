/*
Package protocol defines the mutation events exchanged between the relay and
its participants, and how each one is applied to a graph.

# Why Protocol Package Exists

Every change to the diagram travels as one small named event carrying the
object id plus only the fields that changed. The relay and the participants
both apply the same events through the same graph operations, so applying the
same sequence in the same order on two replicas yields the same diagram.

# Events

	nodeCreated     id, text, shape, x, y, width, height
	nodeModified    id, x, y, width, height
	nodeTextEdited  id, text
	nodeDeleted     id
	linkCreated     id, text, originId, destinationId
	linkModified    id, originId, destinationId
	linkTextEdited  id, text
	linkDeleted     id
	clear           (no payload)
	load            full snapshot as a JSON document

# Decoding

Decode turns socket.io arguments into a typed Event. Object payloads are
decoded with mapstructure using the json field names above. A payload that
does not decode, or that lacks an id, is reported as ErrMalformed; an event
name outside the set above is reported as ErrUnknownEvent.
*/
package protocol
