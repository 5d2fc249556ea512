// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the room handler.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	InvalidSessionError = 3001 // Session cookie missing, invalid or expired.
	InvalidRoomIDError  = 3003 // Target room does not exist or has closed.
	JoinRefusedError    = 3004 // The join predicate refused the player; the reason is in the close text.
	RemovedFromRoom     = 3005 // The player left, was kicked or lost their seat after the grace period.
)
