// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2016 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"fmt"
	"reflect"
	"strconv"
)

// Message - message to put into a queue
type Message struct {
	Command    string   // type of packed data
	Parameters [][]byte // array of parameters
}

// Queue - 1:1 message queue
type Queue struct {
	c    chan Message
	size int
}

// BroadcastQueue - 1:M message queue
type BroadcastQueue struct {
	chans []chan Message
	size  int
}

// the exported message queues and their sizes
// any item with a size option will be allocated that size
// absent then default size is used
type busses struct {
	Consensus *Queue          `size:"50"`   // consensus-ready epochs for the final block driver
	Repair    *Queue          `size:"50"`   // closed microblock gaps from the repair path
	Broadcast *BroadcastQueue `size:"1000"` // to broadcast to other nodes
	TestQueue *Queue          `size:"50"`   // for testing use
}

// Bus - all available message queues
var Bus busses

// size of queue if no size option
const defaultQueueSize = 1000

// initialise all queues with preset size
func init() {

	busType := reflect.TypeOf(Bus)
	busValue := reflect.ValueOf(&Bus).Elem()

	for i := 0; i < busType.NumField(); i += 1 {

		fieldInfo := busType.Field(i)
		sizeTag := fieldInfo.Tag.Get("size")

		queueSize := defaultQueueSize

		// if size specified and valid positive integer override default
		if len(sizeTag) > 0 {
			s, err := strconv.Atoi(sizeTag)
			if nil == err && s > 0 {
				queueSize = s
			} else {
				m := fmt.Sprintf("queue: %v  has invalid size: %q", fieldInfo, sizeTag)
				panic(m)
			}
		}

		switch qt := busValue.Field(i).Interface().(type) {

		case *Queue:
			q := &Queue{
				c:    make(chan Message, queueSize),
				size: queueSize,
			}
			busValue.Field(i).Set(reflect.ValueOf(q))

		case *BroadcastQueue:
			q := &BroadcastQueue{
				chans: make([]chan Message, 0, 10),
				size:  queueSize,
			}
			busValue.Field(i).Set(reflect.ValueOf(q))

		default:
			panic(fmt.Sprintf("queue type: %v is not handled", qt))
		}
	}
}

// Send - send a message to a 1:1 queue
func (queue *Queue) Send(command string, parameters ...[]byte) {
	queue.c <- Message{
		Command:    command,
		Parameters: parameters,
	}
}

// Chan - channel to read from a 1:1 queue
func (queue *Queue) Chan() <-chan Message {
	return queue.c
}

// Drop - remove a pending message from a 1:1 queue
// without blocking if the queue is empty
func (queue *Queue) Drop() {
	select {
	case <-queue.c:
	default:
	}
}

// Send - send a message to a 1:M queue
// messages are dropped if a listener queue is full
func (queue *BroadcastQueue) Send(command string, parameters ...[]byte) {
	m := Message{
		Command:    command,
		Parameters: parameters,
	}
	for _, c := range queue.chans {
		select {
		case c <- m:
		default:
		}
	}
}

// Chan - get a new channel to read from a 1:M queue
// each call gets a distinct channel
func (queue *BroadcastQueue) Chan(size int) <-chan Message {
	if size < 0 {
		panic("negative size")
	} else if 0 == size {
		size = queue.size
	}
	c := make(chan Message, size)
	queue.chans = append(queue.chans, c)
	return c
}
