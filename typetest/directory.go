package typetest

import (
	"fmt"

	"github.com/hujiansuntec-arch/IDL-tools/directory"
)

// ServiceName is the name this service registers itself under and the
// name a DirectoryClient discovers instances by.
const ServiceName = "TypeTest"

// RequestMessageIDs lists every request message id this service's
// dispatch table serves, for registry.ServiceInstance.Methods.
func RequestMessageIDs() []uint32 {
	return []uint32{
		MsgTestIntegersReq,
		MsgTestFloatsReq,
		MsgTestStringReq,
		MsgTestStructReq,
		MsgTestStringSequenceReq,
		MsgTestRecordSequenceReq,
		MsgTestInOutParamsReq,
	}
}

// DirectoryClient is the generated-style typed wrapper over
// directory.Client: the same one-method-per-IDL-operation shape Client
// exposes over a single dialed Engine, but resolved through service
// discovery and load balancing instead of a fixed address. Unlike
// Client, it never holds a push connection — a push channel needs a
// live socket to push down, which discovery-per-call can't offer.
type DirectoryClient struct {
	dir *directory.Client
}

// NewDirectoryClient wraps an already-built directory.Client.
func NewDirectoryClient(dir *directory.Client) *DirectoryClient {
	return &DirectoryClient{dir: dir}
}

func (c *DirectoryClient) TestIntegers(i8 int8, u8 uint8, i16 int16, u16 uint16, i32 int32, u32 uint32, i64 int64, u64 uint64) (int32, error) {
	req := testIntegersRequest{I8: i8, U8: u8, I16: i16, U16: u16, I32: i32, U32: u32, I64: i64, U64: u64}
	raw, err := c.dir.Call(ServiceName, MsgTestIntegersResp, req.encode())
	if err != nil {
		return 0, err
	}
	resp, err := decodeTestIntegersResponse(raw)
	if err != nil {
		return 0, fmt.Errorf("typetest: TestIntegers: %w", err)
	}
	return resp.ReturnValue, nil
}

func (c *DirectoryClient) TestFloats(f float32, d float64) (float64, error) {
	req := testFloatsRequest{F: f, D: d}
	raw, err := c.dir.Call(ServiceName, MsgTestFloatsResp, req.encode())
	if err != nil {
		return 0, err
	}
	resp, err := decodeTestFloatsResponse(raw)
	if err != nil {
		return 0, fmt.Errorf("typetest: TestFloats: %w", err)
	}
	return resp.ReturnValue, nil
}

func (c *DirectoryClient) TestString(s string) (string, error) {
	req := testStringRequest{Str: s}
	raw, err := c.dir.Call(ServiceName, MsgTestStringResp, req.encode())
	if err != nil {
		return "", err
	}
	resp, err := decodeTestStringResponse(raw)
	if err != nil {
		return "", fmt.Errorf("typetest: TestString: %w", err)
	}
	return resp.ReturnValue, nil
}

func (c *DirectoryClient) TestStruct(data DataRecord) (DataRecord, error) {
	req := testStructRequest{Data: data}
	raw, err := c.dir.Call(ServiceName, MsgTestStructResp, req.encode())
	if err != nil {
		return DataRecord{}, err
	}
	resp, err := decodeTestStructResponse(raw)
	if err != nil {
		return DataRecord{}, fmt.Errorf("typetest: TestStruct: %w", err)
	}
	return resp.ReturnValue, nil
}

func (c *DirectoryClient) TestStringSequence(seq []string) ([]string, error) {
	req := testStringSequenceRequest{Seq: seq}
	raw, err := c.dir.Call(ServiceName, MsgTestStringSequenceRsp, req.encode())
	if err != nil {
		return nil, err
	}
	resp, err := decodeTestStringSequenceResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("typetest: TestStringSequence: %w", err)
	}
	return resp.ReturnValue, nil
}

func (c *DirectoryClient) TestRecordSequence(seq []DataRecord) ([]DataRecord, error) {
	req := testRecordSequenceRequest{Seq: seq}
	raw, err := c.dir.Call(ServiceName, MsgTestRecordSequenceRsp, req.encode())
	if err != nil {
		return nil, err
	}
	resp, err := decodeTestRecordSequenceResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("typetest: TestRecordSequence: %w", err)
	}
	return resp.ReturnValue, nil
}

// TestInOutParamsSticky behaves like TestInOutParams but pins repeated
// calls sharing sessionKey to the same discovered instance via
// directory.Client.CallSticky, the consistent-hash affinity path.
func (c *DirectoryClient) TestInOutParamsSticky(sessionKey string, value int32, str string, data DataRecord, seq []int32) (int32, string, DataRecord, []int32, error) {
	req := testInOutParamsRequest{Value: value, Str: str, Data: data, Seq: seq}
	raw, err := c.dir.CallSticky(ServiceName, sessionKey, MsgTestInOutParamsResp, req.encode())
	if err != nil {
		return 0, "", DataRecord{}, nil, err
	}
	resp, err := decodeTestInOutParamsResponse(raw)
	if err != nil {
		return 0, "", DataRecord{}, nil, fmt.Errorf("typetest: TestInOutParams: %w", err)
	}
	return resp.Value, resp.Str, resp.Data, resp.Seq, nil
}
