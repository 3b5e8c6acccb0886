/*
Package peer implements a participant: a local replica of the diagram kept in
sync with the relay.

# Why Peer Package Exists

A participant changes the diagram in two ways. Local user actions are applied
to the replica and then emitted to the relay. Events relayed from other
participants are applied to the replica and never emitted again. Each call
to Replica.Apply says which of the two it is through an Origin, so there is
no shared "applying a remote change" state to get wrong.

# Identifiers

Objects created locally get the id connectionID + millisecond timestamp,
bumped so that one connection never produces the same id twice. Connection
ids are unique on the relay, which keeps ids from different participants
apart without any coordination.

# Links and Cycles

CreateLink and ReconnectLink run the cycle check before touching the replica
and refuse links that would close a loop. The check is local only; the relay
accepts any link whose endpoints exist.
*/
package peer
