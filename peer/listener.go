// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"encoding/binary"
	"encoding/json"

	"github.com/bitmark-inc/logger"
	zmq "github.com/pebbe/zmq4"
	"golang.org/x/time/rate"

	"github.com/openshard/dsnoded/blockdigest"
	"github.com/openshard/dsnoded/dirservice"
	"github.com/openshard/dsnoded/fault"
	"github.com/openshard/dsnoded/mode"
	"github.com/openshard/dsnoded/ratelimit"
	"github.com/openshard/dsnoded/util"
	"github.com/openshard/dsnoded/version"
	"github.com/openshard/dsnoded/zmqutil"
)

const (
	listenerZapDomain = "listen"
	listenerSignal    = "inproc://dsnoded-listener-signal"

	requestsPerSecond = 100
	requestBurst      = 100
)

type listener struct {
	log     *logger.L
	limiter *rate.Limiter
	push    *zmq.Socket // signal send
	pull    *zmq.Socket // signal receive
	socket4 *zmq.Socket // IPv4 traffic
	socket6 *zmq.Socket // IPv6 traffic
}

// type to hold server info
type serverInfo struct {
	Version string `json:"version"`
	Chain   string `json:"chain"`
	Accept  bool   `json:"accept"`
	Epoch   uint64 `json:"epoch"`
}

// initialise the listener
func (lstn *listener) initialise(privateKey []byte, publicKey []byte, listen []string) error {

	log := logger.New("listener")
	if nil == log {
		return fault.ErrInvalidLoggerChannel
	}
	lstn.log = log
	lstn.limiter = rate.NewLimiter(requestsPerSecond, requestBurst)

	log.Info("initialising…")

	c, err := util.NewConnections(listen)
	if nil != err {
		log.Errorf("ip and port error: %v", err)
		return err
	}

	// signalling channel
	lstn.push, lstn.pull, err = zmqutil.NewSignalPair(listenerSignal)
	if nil != err {
		return err
	}

	// allocate IPv4 and IPv6 sockets
	lstn.socket4, lstn.socket6, err = zmqutil.NewBind(log, zmq.REP, listenerZapDomain, privateKey, publicKey, c)
	if nil != err {
		log.Errorf("bind error: %v", err)
		return err
	}

	return nil
}

// Run - wait for incoming requests, process them and reply
func (lstn *listener) Run(args interface{}, shutdown <-chan struct{}) {

	log := lstn.log

	log.Info("starting…")

	go func() {
		poller := zmq.NewPoller()
		if nil != lstn.socket4 {
			poller.Add(lstn.socket4, zmq.POLLIN)
		}
		if nil != lstn.socket6 {
			poller.Add(lstn.socket6, zmq.POLLIN)
		}
		poller.Add(lstn.pull, zmq.POLLIN)
	loop:
		for {
			sockets, _ := poller.Poll(-1)
			for _, socket := range sockets {
				switch s := socket.Socket; s {
				case lstn.socket4:
					lstn.process(lstn.socket4)
				case lstn.socket6:
					lstn.process(lstn.socket6)
				case lstn.pull:
					s.RecvMessageBytes(0)
					break loop
				}
			}
		}
		log.Info("shutting down")
		lstn.pull.Close()
		if nil != lstn.socket4 {
			lstn.socket4.Close()
		}
		if nil != lstn.socket6 {
			lstn.socket6.Close()
		}
		log.Info("stopped")
	}()

	// wait for shutdown
	log.Info("waiting…")
	<-shutdown
	log.Info("initiate shutdown")
	lstn.push.SendMessage("stop")
	lstn.push.Close()
}

// process the request and return response to client
func (lstn *listener) process(socket *zmq.Socket) {

	log := lstn.log

	data, err := socket.RecvMessageBytes(0)
	if nil != err {
		log.Errorf("receive error: %v", err)
		return
	}

	if len(data) < 1 {
		return
	}

	fn := string(data[0])
	parameters := data[1:]

	log.Infof("received message: %q", fn)

	result := []byte{}

	switch fn {
	case "N": // get current epoch
		if err = ratelimit.Limit(lstn.limiter); nil == err {
			result = make([]byte, 8)
			binary.BigEndian.PutUint64(result, dirservice.CurrentEpoch())
		}

	case "M": // get a stored microblock by its hash
		if err = ratelimit.Limit(lstn.limiter); nil != err {
			break
		}
		if 1 != len(parameters) {
			err = fault.ErrMissingParameters
			break
		}
		blockHash := blockdigest.Digest{}
		if nil != blockdigest.DigestFromBytes(&blockHash, parameters[0]) {
			err = fault.ErrMicroBlockNotFound
		} else if body, ok := dirservice.FetchMicroBlock(blockHash); ok {
			result = body
		} else {
			err = fault.ErrMicroBlockNotFound
		}

	case "H": // get a stored microblock hash by epoch and shard id
		if err = ratelimit.Limit(lstn.limiter); nil != err {
			break
		}
		if 1 != len(parameters) || 12 != len(parameters[0]) {
			err = fault.ErrMissingParameters
			break
		}
		epoch := binary.BigEndian.Uint64(parameters[0][:8])
		shardId := binary.BigEndian.Uint32(parameters[0][8:])
		if blockHash, ok := dirservice.FetchMicroBlockHash(epoch, shardId); ok {
			result = blockHash[:]
		} else {
			err = fault.ErrMicroBlockNotFound
		}

	case "I": // server information
		if err = ratelimit.Limit(lstn.limiter); nil == err {
			info := serverInfo{
				Version: version.Version,
				Chain:   mode.ChainName(),
				Accept:  mode.Is(mode.AcceptSubmissions),
				Epoch:   dirservice.CurrentEpoch(),
			}
			result, err = json.Marshal(info)
			fault.PanicIfError("JSON encode error: %v", err)
		}

	case "S": // microblock submission envelope
		epoch := uint64(0)
		epoch, err = lstn.processSubmission(parameters)
		if nil == err {
			result = make([]byte, 8)
			binary.BigEndian.PutUint64(result, epoch)
		}
	}

	if nil != err {
		listenerSendError(socket, err)
		return
	}

	// send results
	_, err = socket.Send(fn, zmq.SNDMORE)
	fault.PanicIfError("Listener", err)
	_, err = socket.SendBytes(result, 0)
	fault.PanicIfError("Listener", err)

	log.Debugf("sent: %q  result: %x", fn, result)
}

// send an error packet
func listenerSendError(socket *zmq.Socket, err error) {
	errorMessage := err.Error()
	_, err = socket.Send("E", zmq.SNDMORE)
	fault.PanicIfError("Listener", err)
	_, err = socket.Send(errorMessage, 0)
	fault.PanicIfError("Listener", err)
}
