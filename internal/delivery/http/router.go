package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"parkpack/internal/delivery/http/controllers"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Presence   *controllers.PresenceController
	Event      *controllers.EventController
	Vote       *controllers.VoteController
	Media      *controllers.MediaController
	Friendship *controllers.FriendshipController
	Message    *controllers.MessageController
	WS         *WSHandler
}

// NewRouter initializes the HTTP router with all application routes. auth
// wraps each handler with bearer token validation.
func NewRouter(c Controllers, auth func(http.HandlerFunc) http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()

	// Presences
	mux.HandleFunc("POST /parks/{locationID}/checkins", auth(c.Presence.CheckIn))
	mux.HandleFunc("DELETE /checkins/{presenceID}", auth(c.Presence.CheckOut))
	mux.HandleFunc("GET /parks/{locationID}/roster", auth(c.Presence.ListRoster))

	// Play dates
	mux.HandleFunc("POST /events", auth(c.Event.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", auth(c.Event.GetEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Event.CancelEvent))
	mux.HandleFunc("POST /events/{eventID}/rsvps", auth(c.Event.RSVP))
	mux.HandleFunc("DELETE /rsvps/{rsvpID}", auth(c.Event.CancelRSVP))
	mux.HandleFunc("POST /events/{eventID}/invitations", auth(c.Event.Invite))
	mux.HandleFunc("GET /parks/{locationID}/events", auth(c.Event.ListByLocation))
	mux.HandleFunc("GET /me/events", auth(c.Event.ListMine))

	// Votes
	mux.HandleFunc("POST /votes/{kind}/{subjectID}/toggle", auth(c.Vote.Toggle))
	mux.HandleFunc("DELETE /votes/{kind}/{subjectID}", auth(c.Vote.Unvote))

	// Park media
	mux.HandleFunc("POST /parks/{locationID}/photos", auth(c.Media.AddPhoto))
	mux.HandleFunc("GET /parks/{locationID}/photos", auth(c.Media.ListPhotos))
	mux.HandleFunc("POST /parks/{locationID}/reviews", auth(c.Media.AddReview))
	mux.HandleFunc("GET /parks/{locationID}/reviews", auth(c.Media.ListReviews))

	// Friendships
	mux.HandleFunc("POST /friendships", auth(c.Friendship.SendRequest))
	mux.HandleFunc("POST /friendships/{friendshipID}/accept", auth(c.Friendship.Accept))
	mux.HandleFunc("POST /friendships/{friendshipID}/decline", auth(c.Friendship.Decline))
	mux.HandleFunc("DELETE /friendships/{friendshipID}", auth(c.Friendship.Remove))
	mux.HandleFunc("GET /me/friends", auth(c.Friendship.ListFriends))

	// Messages
	mux.HandleFunc("POST /conversations/{conversationID}/messages", auth(c.Message.Send))
	mux.HandleFunc("GET /conversations/{conversationID}/messages", auth(c.Message.ListConversation))

	// Realtime
	mux.HandleFunc("GET /ws", auth(c.WS.Serve))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
