package gateway

import (
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"doctor-booking-api/internal/rpc"
)

// grpcWeb unwraps one grpc-web frame, forwards the payload undecoded to the
// gRPC server and frames the reply. Interceptors on the server do auth.
func (s *server) grpcWeb(c *gin.Context) {
	if !strings.HasPrefix(c.GetHeader("Content-Type"), "application/grpc-web") {
		c.String(http.StatusUnsupportedMediaType, "not grpc-web")
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeWebError(c.Writer, codes.Internal, "read body failed")
		return
	}
	if len(body) < 5 {
		writeWebError(c.Writer, codes.InvalidArgument, "body too short")
		return
	}

	// grpc-web frame: 1-byte flag + 4-byte big-endian length + protobuf
	msgLen := binary.BigEndian.Uint32(body[1:5])
	if uint64(msgLen)+5 > uint64(len(body)) {
		writeWebError(c.Writer, codes.InvalidArgument, "incomplete frame")
		return
	}
	payload := body[5 : 5+msgLen]

	md := metadata.MD{}
	if vals := c.Request.Header.Values("Authorization"); len(vals) > 0 {
		md.Set("authorization", vals...)
	}
	ctx := metadata.NewOutgoingContext(c.Request.Context(), md)

	method := "/" + rpc.ServiceName + "/" + c.Param("method")
	resp := &rpc.Raw{}
	err = s.conn.Invoke(ctx, method, &rpc.Raw{Data: payload}, resp, grpc.ForceCodec(rpc.Codec{}))
	if err != nil {
		st, _ := status.FromError(err)
		s.log.Debug().Str("method", method).Str("code", st.Code().String()).Msg("grpc-web error")
		writeWebError(c.Writer, st.Code(), st.Message())
		return
	}
	writeWebSuccess(c.Writer, resp.Data)
}

func frame(flag byte, data []byte) []byte {
	f := make([]byte, 5+len(data))
	f[0] = flag
	binary.BigEndian.PutUint32(f[1:5], uint32(len(data)))
	copy(f[5:], data)
	return f
}

func writeWebError(w http.ResponseWriter, code codes.Code, msg string) {
	w.Header().Set("Content-Type", "application/grpc-web+proto")
	w.WriteHeader(http.StatusOK)
	trailer := fmt.Sprintf("grpc-status:%d\r\ngrpc-message:%s\r\n", code, msg)
	_, _ = w.Write(frame(0x80, []byte(trailer)))
}

func writeWebSuccess(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/grpc-web+proto")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(frame(0x00, data))
	_, _ = w.Write(frame(0x80, []byte("grpc-status:0\r\n")))
}
