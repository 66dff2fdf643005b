/*
NaiveSystems Analyze - A tool for static code analysis
Copyright (C) 2023  Naive Systems Ltd.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package sender reports anonymous usage events over HTTP. Reporting is
// strictly opt-in: until Enable is called, Send is a no-op and no network
// traffic happens. Messages are queued and delivered asynchronously with
// bounded retries so a dead receiver never blocks an analysis run.
package sender

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
)

const (
	defaultReceiverURL = "https://naivesystems.com/receiver.php"
	maxRetries         = 3
	retryDelay         = 5 * time.Second
)

type jsonObject = map[string]any

var (
	enableOnce  sync.Once
	enabled     bool
	receiverURL string

	q               = make(chan jsonObject, 1000)
	pendingMessages sync.WaitGroup

	waitStartMutex sync.Mutex
	waitStarted    bool
	waitStartTime  time.Time
)

var sessionID = uuid.NewString()

// initData is attached to the first message of a session only.
func initData() jsonObject {
	data := jsonObject{
		"goos":    runtime.GOOS,
		"goarch":  runtime.GOARCH,
		"numcpu":  runtime.NumCPU(),
		"version": runtime.Version(),
	}
	hostname, err := os.Hostname()
	if err == nil {
		data["hostname"] = hostname
	}
	if runtime.GOOS == "linux" {
		var utsname syscall.Utsname
		if err := syscall.Uname(&utsname); err == nil {
			data["utsname"] = jsonObject{
				"sysname":  charArrayToString(utsname.Sysname[:]),
				"release":  charArrayToString(utsname.Release[:]),
				"version":  charArrayToString(utsname.Version[:]),
				"machine":  charArrayToString(utsname.Machine[:]),
				"nodename": charArrayToString(utsname.Nodename[:]),
			}
		}
	}
	return data
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			TLSHandshakeTimeout:   retryDelay,
			DisableKeepAlives:     true,
			MaxIdleConns:          1,
			MaxConnsPerHost:       1,
			IdleConnTimeout:       1 * time.Millisecond,
			ResponseHeaderTimeout: retryDelay,
		},
		Timeout: 30 * time.Second,
	}
}

// Enable turns reporting on and starts the delivery goroutine. An empty
// url selects the default receiver. Calling Enable more than once has no
// further effect.
func Enable(url string) {
	enableOnce.Do(func() {
		if url == "" {
			url = defaultReceiverURL
		}
		receiverURL = url
		enabled = true
		go deliver()
	})
}

func deliver() {
	firstMessage := true
	client := newHTTPClient()

	for data := range q {
		if firstMessage {
			for key, value := range initData() {
				data[key] = value
			}
		}

		jsonData, err := json.Marshal(data)
		if err != nil {
			pendingMessages.Done()
			continue
		}

		retryCount := 0
		for {
			if hasWaitedTooLong() {
				break
			}

			err := sendPostRequest(client, jsonData)
			client.CloseIdleConnections()
			if err == nil {
				firstMessage = false
				break
			}

			// Create a new client if an error occurred.
			client = newHTTPClient()

			retryCount++
			if retryCount >= maxRetries {
				break
			}

			time.Sleep(retryDelay)
		}

		pendingMessages.Done()
	}
}

func sendPostRequest(client *http.Client, jsonData []byte) error {
	req, err := http.NewRequest("POST", receiverURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("resp status %d %s", resp.StatusCode, resp.Status)
	}

	return nil
}

func charArrayToString(ca []int8) string {
	var bs []byte
	for _, c := range ca {
		if c == 0 {
			break
		}
		bs = append(bs, byte(c))
	}
	return string(bs)
}

// Send queues one event. args are alternating key-value pairs.
func Send(msg string, args ...interface{}) {
	if !enabled {
		return
	}

	data := jsonObject{
		"session_id": sessionID,
		"id":         uuid.NewString(),
		"msg":        msg,
	}

	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || i+1 >= len(args) {
			glog.Errorf("invalid argument at position %d", i)
			return
		}
		data[key] = args[i+1]
	}

	pendingMessages.Add(1)
	q <- data
}

// Wait blocks until queued messages are delivered or a minute has passed,
// whichever comes first.
func Wait() {
	if !enabled {
		return
	}
	setWaitStarted()
	pendingMessages.Wait()
}

func setWaitStarted() {
	waitStartMutex.Lock()
	defer waitStartMutex.Unlock()
	waitStarted = true
	waitStartTime = time.Now()
}

func hasWaitedTooLong() bool {
	waitStartMutex.Lock()
	defer waitStartMutex.Unlock()
	return waitStarted && time.Since(waitStartTime) > 1*time.Minute
}
