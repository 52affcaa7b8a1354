package typetest

import (
	"fmt"
	"time"

	"github.com/hujiansuntec-arch/IDL-tools/client"
)

// Client is the generated-style typed wrapper over client.Engine: one
// method per IDL operation, each doing exactly what the teacher's
// client.Call did per call — serialize, send, await, deserialize —
// but with its own request and response shape instead of a generic
// any-typed payload.
type Client struct {
	engine *client.Engine
}

// OnKeyChangedFunc is invoked synchronously, on the engine's listener
// goroutine, whenever the server pushes a key-change notification.
// The handler must be wired into the Engine at dial time (via
// DialStream/DialDatagram, or client.PushHandler for an engine built
// by hand) — there is no way to attach one after the fact.
type OnKeyChangedFunc func(event KeyChangeEvent)

// NewClient wraps an already-dialed Engine whose push handlers, if
// any, were set up when it was dialed.
func NewClient(engine *client.Engine) *Client {
	return &Client{engine: engine}
}

// DialStream connects to a stream-binding server and wires onKeyChanged
// as the push handler for the OnKeyChanged channel.
func DialStream(host string, port int, onKeyChanged OnKeyChangedFunc, callTimeout time.Duration) (*Client, error) {
	handlers := pushHandlers(onKeyChanged)
	engine, err := client.DialStream(host, port, handlers, callTimeout)
	if err != nil {
		return nil, err
	}
	return &Client{engine: engine}, nil
}

// DialDatagram connects to a datagram-binding server and wires
// onKeyChanged the same way DialStream does.
func DialDatagram(host string, port int, onKeyChanged OnKeyChangedFunc, callTimeout time.Duration) (*Client, error) {
	handlers := pushHandlers(onKeyChanged)
	engine, err := client.DialDatagram(host, port, handlers, callTimeout)
	if err != nil {
		return nil, err
	}
	return &Client{engine: engine}, nil
}

func pushHandlers(onKeyChanged OnKeyChangedFunc) map[uint32]client.PushHandler {
	if onKeyChanged == nil {
		return nil
	}
	return map[uint32]client.PushHandler{
		MsgOnKeyChanged: func(msg []byte) {
			decoded, err := decodeOnKeyChangedMessage(msg)
			if err != nil {
				return
			}
			onKeyChanged(decoded.Event)
		},
	}
}

// Close releases the underlying engine.
func (c *Client) Close() error {
	return c.engine.Close()
}

// TestIntegers exercises every integer width and signedness in one
// round trip; scenario 1 expects the handler to return i32+1000.
func (c *Client) TestIntegers(i8 int8, u8 uint8, i16 int16, u16 uint16, i32 int32, u32 uint32, i64 int64, u64 uint64) (int32, error) {
	req := testIntegersRequest{I8: i8, U8: u8, I16: i16, U16: u16, I32: i32, U32: u32, I64: i64, U64: u64}
	raw, err := c.engine.Call(MsgTestIntegersResp, req.encode())
	if err != nil {
		return 0, err
	}
	resp, err := decodeTestIntegersResponse(raw)
	if err != nil {
		return 0, fmt.Errorf("typetest: TestIntegers: %w", err)
	}
	return resp.ReturnValue, nil
}

// TestFloats exercises float32/float64; scenario 2 expects f+d.
func (c *Client) TestFloats(f float32, d float64) (float64, error) {
	req := testFloatsRequest{F: f, D: d}
	raw, err := c.engine.Call(MsgTestFloatsResp, req.encode())
	if err != nil {
		return 0, err
	}
	resp, err := decodeTestFloatsResponse(raw)
	if err != nil {
		return 0, fmt.Errorf("typetest: TestFloats: %w", err)
	}
	return resp.ReturnValue, nil
}

// TestString exercises the length-prefixed string codec; scenario 3
// expects "Echo: " prefixed to the input.
func (c *Client) TestString(s string) (string, error) {
	req := testStringRequest{Str: s}
	raw, err := c.engine.Call(MsgTestStringResp, req.encode())
	if err != nil {
		return "", err
	}
	resp, err := decodeTestStringResponse(raw)
	if err != nil {
		return "", fmt.Errorf("typetest: TestString: %w", err)
	}
	return resp.ReturnValue, nil
}

// TestStruct sends a record and observes the mutation the handler
// applies to it; scenario 4.
func (c *Client) TestStruct(data DataRecord) (DataRecord, error) {
	req := testStructRequest{Data: data}
	raw, err := c.engine.Call(MsgTestStructResp, req.encode())
	if err != nil {
		return DataRecord{}, err
	}
	resp, err := decodeTestStructResponse(raw)
	if err != nil {
		return DataRecord{}, fmt.Errorf("typetest: TestStruct: %w", err)
	}
	return resp.ReturnValue, nil
}

// TestStringSequence exercises the sequence-of-strings codec.
func (c *Client) TestStringSequence(seq []string) ([]string, error) {
	req := testStringSequenceRequest{Seq: seq}
	raw, err := c.engine.Call(MsgTestStringSequenceRsp, req.encode())
	if err != nil {
		return nil, err
	}
	resp, err := decodeTestStringSequenceResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("typetest: TestStringSequence: %w", err)
	}
	return resp.ReturnValue, nil
}

// TestRecordSequence exercises the sequence-of-records codec.
func (c *Client) TestRecordSequence(seq []DataRecord) ([]DataRecord, error) {
	req := testRecordSequenceRequest{Seq: seq}
	raw, err := c.engine.Call(MsgTestRecordSequenceRsp, req.encode())
	if err != nil {
		return nil, err
	}
	resp, err := decodeTestRecordSequenceResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("typetest: TestRecordSequence: %w", err)
	}
	return resp.ReturnValue, nil
}

// TestInOutParams exercises in/out parameter semantics: scenario 6
// expects the handler to double value, append "_modified" to str, add
// 999 to data.I32, and add 100 to each element of seq. On a failed
// call the caller's inputs are the only values it has — there is
// nothing to "leave untouched" on this side, since the generated
// client never mutates its own arguments in place.
func (c *Client) TestInOutParams(value int32, str string, data DataRecord, seq []int32) (int32, string, DataRecord, []int32, error) {
	req := testInOutParamsRequest{Value: value, Str: str, Data: data, Seq: seq}
	raw, err := c.engine.Call(MsgTestInOutParamsResp, req.encode())
	if err != nil {
		return 0, "", DataRecord{}, nil, err
	}
	resp, err := decodeTestInOutParamsResponse(raw)
	if err != nil {
		return 0, "", DataRecord{}, nil, fmt.Errorf("typetest: TestInOutParams: %w", err)
	}
	return resp.Value, resp.Str, resp.Data, resp.Seq, nil
}
