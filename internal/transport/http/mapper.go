package http

import (
	"encoding/json"
	"time"

	"github.com/vovakirdan/wirechat-dm/internal/core"
	"github.com/vovakirdan/wirechat-dm/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeSendMessage:
		var data proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, badRequest("invalid send-message payload")
		}
		// Content and receiver are validated by the delivery pipeline so the
		// sender gets a message-error rather than a protocol error.
		return &core.Command{
			Kind:    core.CommandSendMessage,
			PeerID:  data.ReceiverID,
			Content: data.Content,
		}, nil
	case proto.InboundTypeTyping:
		var data proto.TypingData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, badRequest("invalid typing payload")
		}
		if data.ReceiverID == "" {
			return nil, badRequest("receiverId is required")
		}
		return &core.Command{
			Kind:     core.CommandTyping,
			PeerID:   data.ReceiverID,
			IsTyping: data.IsTyping,
		}, nil
	case proto.InboundTypeMarkRead:
		var data proto.MarkReadData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, badRequest("invalid mark-read payload")
		}
		if data.SenderID == "" {
			return nil, badRequest("senderId is required")
		}
		return &core.Command{
			Kind:   core.CommandMarkRead,
			PeerID: data.SenderID,
		}, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}
	}
}

func badRequest(msg string) *proto.Error {
	return &proto.Error{Code: core.ErrCodeBadRequest, Msg: msg}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	out := proto.Outbound{Type: proto.OutboundTypeEvent, Event: event.Kind.String()}

	switch event.Kind {
	case core.EventOnlineUsers:
		users := event.Users
		if users == nil {
			users = []string{}
		}
		out.Data = proto.OnlineUsersData(users)
	case core.EventUserStatus:
		out.Data = proto.UserStatusData{UserID: event.UserID, IsOnline: event.Online}
	case core.EventReceiveMessage, core.EventMessageSent:
		out.Data = messageToProto(event.Message)
	case core.EventMessageError:
		data := proto.MessageErrorData{Code: core.ErrCodeValidation, Reason: "message rejected"}
		if event.Error != nil {
			data = proto.MessageErrorData{Code: event.Error.Code, Reason: event.Error.Message}
		}
		out.Data = data
	case core.EventUserTyping:
		out.Data = proto.UserTypingData{UserID: event.UserID, Username: event.Username, IsTyping: event.Typing}
	case core.EventMessagesRead:
		out.Data = proto.MessagesReadData{UserID: event.UserID}
	case core.EventSessionReplaced:
		out.Data = proto.SessionReplacedData{UserID: event.UserID}
	case core.EventError:
		out = proto.Outbound{Type: proto.OutboundTypeError}
		if event.Error == nil {
			out.Error = &proto.Error{Code: "unknown", Msg: "unknown error"}
		} else {
			out.Error = &proto.Error{Code: event.Error.Code, Msg: event.Error.Message}
		}
	}
	return out
}

func messageToProto(m *core.Message) *proto.MessageData {
	if m == nil {
		return nil
	}
	data := &proto.MessageData{
		ID:        m.ID,
		Sender:    summaryToProto(m.Sender),
		Receiver:  summaryToProto(m.Receiver),
		Content:   m.Content,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339Nano),
		Read:      m.Read,
	}
	if m.ReadAt != nil {
		data.ReadAt = m.ReadAt.UTC().Format(time.RFC3339Nano)
	}
	return data
}

func summaryToProto(s core.UserSummary) proto.UserSummary {
	return proto.UserSummary{ID: s.ID, Username: s.Username, Avatar: s.Avatar}
}
