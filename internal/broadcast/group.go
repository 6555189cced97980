package broadcast

// groupKind is the closed set of connection group shapes
type groupKind int

const (
	kindRoom groupKind = iota
	kindRoomParticipant
	kindParticipant
)

// Group is an addressable broadcast target: a whole room, one
// participant's connection within a room, or a participant's account
// across all devices.
type Group struct {
	kind   groupKind
	roomID string
	userID string
}

// Room addresses every connection in a room
func Room(roomID string) Group {
	return Group{kind: kindRoom, roomID: roomID}
}

// RoomParticipant addresses the connection representing one participant
// within a room. Used to force-logout a stale connection.
func RoomParticipant(roomID, userID string) Group {
	return Group{kind: kindRoomParticipant, roomID: roomID, userID: userID}
}

// Participant addresses every connection of one account, in any room
func Participant(userID string) Group {
	return Group{kind: kindParticipant, userID: userID}
}

// channelPrefix namespaces every group channel so one pub/sub pattern
// subscription covers them all
const channelPrefix = "bcast:"

// Channel maps the group to its backplane channel name
func (g Group) Channel() string {
	switch g.kind {
	case kindRoom:
		return channelPrefix + "room:" + g.roomID
	case kindRoomParticipant:
		return channelPrefix + "room:" + g.roomID + ":user:" + g.userID
	default:
		return channelPrefix + "user:" + g.userID
	}
}
