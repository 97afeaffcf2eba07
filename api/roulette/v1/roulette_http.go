package v1

import (
	context "context"

	http "github.com/go-kratos/kratos/v2/transport/http"
	binding "github.com/go-kratos/kratos/v2/transport/http/binding"
)

const OperationRouletteServiceGetState = "/roulette.v1.RouletteService/GetState"
const OperationRouletteServiceSpin = "/roulette.v1.RouletteService/Spin"
const OperationRouletteServiceGetConfig = "/roulette.v1.RouletteService/GetConfig"
const OperationRouletteServiceSetConfig = "/roulette.v1.RouletteService/SetConfig"
const OperationRouletteServiceNudge = "/roulette.v1.RouletteService/Nudge"
const OperationRouletteServiceSetAutoSpin = "/roulette.v1.RouletteService/SetAutoSpin"
const OperationRouletteServiceListHistory = "/roulette.v1.RouletteService/ListHistory"
const OperationRouletteServiceClearHistory = "/roulette.v1.RouletteService/ClearHistory"
const OperationRouletteServiceCreateBatch = "/roulette.v1.RouletteService/CreateBatch"
const OperationRouletteServiceGetBatch = "/roulette.v1.RouletteService/GetBatch"
const OperationRouletteServiceListBatches = "/roulette.v1.RouletteService/ListBatches"
const OperationRouletteServiceCancelBatch = "/roulette.v1.RouletteService/CancelBatch"
const OperationRouletteServiceDeleteBatch = "/roulette.v1.RouletteService/DeleteBatch"

type RouletteServiceHTTPServer interface {
	GetState(context.Context, *GetStateRequest) (*GetStateReply, error)
	Spin(context.Context, *SpinRequest) (*SpinReply, error)
	GetConfig(context.Context, *GetConfigRequest) (*ConfigReply, error)
	SetConfig(context.Context, *SetConfigRequest) (*ConfigReply, error)
	Nudge(context.Context, *NudgeRequest) (*NudgeReply, error)
	SetAutoSpin(context.Context, *SetAutoSpinRequest) (*AutoSpinReply, error)
	ListHistory(context.Context, *ListHistoryRequest) (*ListHistoryReply, error)
	ClearHistory(context.Context, *ClearHistoryRequest) (*Empty, error)
	CreateBatch(context.Context, *CreateBatchRequest) (*BatchReply, error)
	GetBatch(context.Context, *BatchRequest) (*BatchReply, error)
	ListBatches(context.Context, *ListBatchesRequest) (*ListBatchesReply, error)
	CancelBatch(context.Context, *BatchRequest) (*BatchReply, error)
	DeleteBatch(context.Context, *BatchRequest) (*Empty, error)
}

func RegisterRouletteServiceHTTPServer(s *http.Server, srv RouletteServiceHTTPServer) {
	r := s.Route("/")
	r.GET("/roulette/state", _RouletteService_GetState0_HTTP_Handler(srv))
	r.POST("/roulette/spin", _RouletteService_Spin0_HTTP_Handler(srv))
	r.GET("/roulette/config", _RouletteService_GetConfig0_HTTP_Handler(srv))
	r.PUT("/roulette/config", _RouletteService_SetConfig0_HTTP_Handler(srv))
	r.POST("/roulette/nudge", _RouletteService_Nudge0_HTTP_Handler(srv))
	r.PUT("/roulette/autospin", _RouletteService_SetAutoSpin0_HTTP_Handler(srv))
	r.GET("/roulette/history", _RouletteService_ListHistory0_HTTP_Handler(srv))
	r.DELETE("/roulette/history", _RouletteService_ClearHistory0_HTTP_Handler(srv))
	r.POST("/roulette/batches", _RouletteService_CreateBatch0_HTTP_Handler(srv))
	r.GET("/roulette/batches", _RouletteService_ListBatches0_HTTP_Handler(srv))
	r.GET("/roulette/batches/{batch_id}", _RouletteService_GetBatch0_HTTP_Handler(srv))
	r.POST("/roulette/batches/{batch_id}/cancel", _RouletteService_CancelBatch0_HTTP_Handler(srv))
	r.DELETE("/roulette/batches/{batch_id}", _RouletteService_DeleteBatch0_HTTP_Handler(srv))
}

func _RouletteService_GetState0_HTTP_Handler(srv RouletteServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in GetStateRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationRouletteServiceGetState)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GetState(ctx, req.(*GetStateRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*GetStateReply)
		return ctx.Result(200, reply)
	}
}

func _RouletteService_Spin0_HTTP_Handler(srv RouletteServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in SpinRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationRouletteServiceSpin)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Spin(ctx, req.(*SpinRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*SpinReply)
		return ctx.Result(200, reply)
	}
}

func _RouletteService_GetConfig0_HTTP_Handler(srv RouletteServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in GetConfigRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationRouletteServiceGetConfig)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GetConfig(ctx, req.(*GetConfigRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*ConfigReply)
		return ctx.Result(200, reply)
	}
}

func _RouletteService_SetConfig0_HTTP_Handler(srv RouletteServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in SetConfigRequest
		if err := ctx.Bind(&in.Config); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationRouletteServiceSetConfig)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.SetConfig(ctx, req.(*SetConfigRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*ConfigReply)
		return ctx.Result(200, reply)
	}
}

func _RouletteService_Nudge0_HTTP_Handler(srv RouletteServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in NudgeRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationRouletteServiceNudge)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Nudge(ctx, req.(*NudgeRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*NudgeReply)
		return ctx.Result(200, reply)
	}
}

func _RouletteService_SetAutoSpin0_HTTP_Handler(srv RouletteServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in SetAutoSpinRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationRouletteServiceSetAutoSpin)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.SetAutoSpin(ctx, req.(*SetAutoSpinRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*AutoSpinReply)
		return ctx.Result(200, reply)
	}
}

func _RouletteService_ListHistory0_HTTP_Handler(srv RouletteServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in ListHistoryRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationRouletteServiceListHistory)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ListHistory(ctx, req.(*ListHistoryRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*ListHistoryReply)
		return ctx.Result(200, reply)
	}
}

func _RouletteService_ClearHistory0_HTTP_Handler(srv RouletteServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in ClearHistoryRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationRouletteServiceClearHistory)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ClearHistory(ctx, req.(*ClearHistoryRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*Empty)
		return ctx.Result(200, reply)
	}
}

func _RouletteService_CreateBatch0_HTTP_Handler(srv RouletteServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in CreateBatchRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationRouletteServiceCreateBatch)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.CreateBatch(ctx, req.(*CreateBatchRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*BatchReply)
		return ctx.Result(200, reply)
	}
}

func _RouletteService_ListBatches0_HTTP_Handler(srv RouletteServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in ListBatchesRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationRouletteServiceListBatches)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ListBatches(ctx, req.(*ListBatchesRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*ListBatchesReply)
		return ctx.Result(200, reply)
	}
}

func _RouletteService_GetBatch0_HTTP_Handler(srv RouletteServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in BatchRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationRouletteServiceGetBatch)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GetBatch(ctx, req.(*BatchRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*BatchReply)
		return ctx.Result(200, reply)
	}
}

func _RouletteService_CancelBatch0_HTTP_Handler(srv RouletteServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in BatchRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationRouletteServiceCancelBatch)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.CancelBatch(ctx, req.(*BatchRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*BatchReply)
		return ctx.Result(200, reply)
	}
}

func _RouletteService_DeleteBatch0_HTTP_Handler(srv RouletteServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in BatchRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationRouletteServiceDeleteBatch)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.DeleteBatch(ctx, req.(*BatchRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*Empty)
		return ctx.Result(200, reply)
	}
}

type RouletteServiceHTTPClient interface {
	GetState(ctx context.Context, req *GetStateRequest, opts ...http.CallOption) (rsp *GetStateReply, err error)
	Spin(ctx context.Context, req *SpinRequest, opts ...http.CallOption) (rsp *SpinReply, err error)
	SetConfig(ctx context.Context, req *SetConfigRequest, opts ...http.CallOption) (rsp *ConfigReply, err error)
	CreateBatch(ctx context.Context, req *CreateBatchRequest, opts ...http.CallOption) (rsp *BatchReply, err error)
	GetBatch(ctx context.Context, req *BatchRequest, opts ...http.CallOption) (rsp *BatchReply, err error)
	ListBatches(ctx context.Context, req *ListBatchesRequest, opts ...http.CallOption) (rsp *ListBatchesReply, err error)
	CancelBatch(ctx context.Context, req *BatchRequest, opts ...http.CallOption) (rsp *BatchReply, err error)
}

type RouletteServiceHTTPClientImpl struct {
	cc *http.Client
}

func NewRouletteServiceHTTPClient(client *http.Client) RouletteServiceHTTPClient {
	return &RouletteServiceHTTPClientImpl{client}
}

func (c *RouletteServiceHTTPClientImpl) GetState(ctx context.Context, in *GetStateRequest, opts ...http.CallOption) (*GetStateReply, error) {
	var out GetStateReply
	pattern := "/roulette/state"
	path := binding.EncodeURL(pattern, in, true)
	opts = append(opts, http.Operation(OperationRouletteServiceGetState))
	opts = append(opts, http.PathTemplate(pattern))
	err := c.cc.Invoke(ctx, "GET", path, nil, &out, opts...)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RouletteServiceHTTPClientImpl) Spin(ctx context.Context, in *SpinRequest, opts ...http.CallOption) (*SpinReply, error) {
	var out SpinReply
	pattern := "/roulette/spin"
	path := binding.EncodeURL(pattern, in, false)
	opts = append(opts, http.Operation(OperationRouletteServiceSpin))
	opts = append(opts, http.PathTemplate(pattern))
	err := c.cc.Invoke(ctx, "POST", path, in, &out, opts...)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RouletteServiceHTTPClientImpl) SetConfig(ctx context.Context, in *SetConfigRequest, opts ...http.CallOption) (*ConfigReply, error) {
	var out ConfigReply
	pattern := "/roulette/config"
	path := binding.EncodeURL(pattern, in, false)
	opts = append(opts, http.Operation(OperationRouletteServiceSetConfig))
	opts = append(opts, http.PathTemplate(pattern))
	err := c.cc.Invoke(ctx, "PUT", path, in.Config, &out, opts...)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RouletteServiceHTTPClientImpl) CreateBatch(ctx context.Context, in *CreateBatchRequest, opts ...http.CallOption) (*BatchReply, error) {
	var out BatchReply
	pattern := "/roulette/batches"
	path := binding.EncodeURL(pattern, in, false)
	opts = append(opts, http.Operation(OperationRouletteServiceCreateBatch))
	opts = append(opts, http.PathTemplate(pattern))
	err := c.cc.Invoke(ctx, "POST", path, in, &out, opts...)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RouletteServiceHTTPClientImpl) GetBatch(ctx context.Context, in *BatchRequest, opts ...http.CallOption) (*BatchReply, error) {
	var out BatchReply
	pattern := "/roulette/batches/{batch_id}"
	path := binding.EncodeURL(pattern, in, true)
	opts = append(opts, http.Operation(OperationRouletteServiceGetBatch))
	opts = append(opts, http.PathTemplate(pattern))
	err := c.cc.Invoke(ctx, "GET", path, nil, &out, opts...)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RouletteServiceHTTPClientImpl) ListBatches(ctx context.Context, in *ListBatchesRequest, opts ...http.CallOption) (*ListBatchesReply, error) {
	var out ListBatchesReply
	pattern := "/roulette/batches"
	path := binding.EncodeURL(pattern, in, true)
	opts = append(opts, http.Operation(OperationRouletteServiceListBatches))
	opts = append(opts, http.PathTemplate(pattern))
	err := c.cc.Invoke(ctx, "GET", path, nil, &out, opts...)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RouletteServiceHTTPClientImpl) CancelBatch(ctx context.Context, in *BatchRequest, opts ...http.CallOption) (*BatchReply, error) {
	var out BatchReply
	pattern := "/roulette/batches/{batch_id}/cancel"
	path := binding.EncodeURL(pattern, in, false)
	opts = append(opts, http.Operation(OperationRouletteServiceCancelBatch))
	opts = append(opts, http.PathTemplate(pattern))
	err := c.cc.Invoke(ctx, "POST", path, in, &out, opts...)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
