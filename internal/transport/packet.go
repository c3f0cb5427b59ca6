package transport

import (
	"errors"
	"fmt"

	"github.com/livekit/protocol/livekit"
	"google.golang.org/protobuf/proto"
)

var ErrNotUserPacket = errors.New("data packet carries no user payload")

// EncodePacket frames payload as a LiveKit user data packet from sender.
func EncodePacket(sender string, payload []byte, reliable bool) ([]byte, error) {
	kind := livekit.DataPacket_LOSSY
	if reliable {
		kind = livekit.DataPacket_RELIABLE
	}

	pkt := &livekit.DataPacket{
		Kind:                kind,
		ParticipantIdentity: sender,
		Value: &livekit.DataPacket_User{
			User: &livekit.UserPacket{
				ParticipantIdentity: sender,
				Payload:             payload,
			},
		},
	}

	b, err := proto.Marshal(pkt)
	if err != nil {
		return nil, fmt.Errorf("marshal data packet: %w", err)
	}
	return b, nil
}

// DecodePacket returns the user payload and sender identity of a framed
// packet.
func DecodePacket(b []byte) (payload []byte, sender string, err error) {
	var pkt livekit.DataPacket
	if err := proto.Unmarshal(b, &pkt); err != nil {
		return nil, "", fmt.Errorf("unmarshal data packet: %w", err)
	}

	user := pkt.GetUser()
	if user == nil {
		return nil, "", ErrNotUserPacket
	}

	sender = pkt.GetParticipantIdentity()
	if sender == "" {
		sender = user.GetParticipantIdentity()
	}
	return user.GetPayload(), sender, nil
}

// Restamp rewrites the sender of a framed packet. The room hub uses it so a
// participant cannot speak as someone else.
func Restamp(b []byte, sender string) ([]byte, error) {
	var pkt livekit.DataPacket
	if err := proto.Unmarshal(b, &pkt); err != nil {
		return nil, fmt.Errorf("unmarshal data packet: %w", err)
	}
	user := pkt.GetUser()
	if user == nil {
		return nil, ErrNotUserPacket
	}

	pkt.ParticipantIdentity = sender
	user.ParticipantIdentity = sender

	out, err := proto.Marshal(&pkt)
	if err != nil {
		return nil, fmt.Errorf("marshal data packet: %w", err)
	}
	return out, nil
}
