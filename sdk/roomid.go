package sdk

import "math/rand/v2"

const roomIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RoomIDLength is the length of ids returned by GenerateRoomID.
const RoomIDLength = 8

// GenerateRoomID returns a random room id of RoomIDLength characters drawn
// from [a-z0-9]. Ids are shareable handles, not secrets.
func GenerateRoomID() string {
	b := make([]byte, RoomIDLength)
	for i := range b {
		b[i] = roomIDAlphabet[rand.IntN(len(roomIDAlphabet))]
	}
	return string(b)
}
