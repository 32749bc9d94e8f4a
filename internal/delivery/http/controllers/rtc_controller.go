package controllers

import (
	"net/http"

	h "hirelens/internal/delivery/http/helpers"

	"github.com/pion/webrtc/v4"
)

// ICEServersResponse is the body of GET /api/rtc/ice-servers. Browsers pass
// ice_servers straight into their RTCPeerConnection configuration.
type ICEServersResponse struct {
	ICEServers []webrtc.ICEServer `json:"ice_servers"`
}

type RTCController struct {
	ICEServers []webrtc.ICEServer
}

func NewRTCController(servers []webrtc.ICEServer) *RTCController {
	if servers == nil {
		servers = []webrtc.ICEServer{}
	}
	return &RTCController{ICEServers: servers}
}

// ICEServers godoc
// @Summary STUN/TURN configuration
// @Description ICE servers the browser should use when opening a peer connection for a call.
// @Tags rtc
// @Produce json
// @Success 200 {object} helpers.APIResponse{data=ICEServersResponse}
// @Router /api/rtc/ice-servers [get]
func (c *RTCController) GetICEServers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	h.WriteJSONSuccess(w, http.StatusOK, ICEServersResponse{ICEServers: c.ICEServers})
}
