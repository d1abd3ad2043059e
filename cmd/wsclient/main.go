// Command wsclient is a development client that exercises the full
// capture-translate-speak flow against a running server. It streams a PCM
// file over the WebSocket as if it were a live microphone, waits for the
// recognition result, then translates and synthesizes it over the REST API.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type sessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

type serverMessage struct {
	Type         string `json:"type"`
	Stage        string `json:"stage,omitempty"`
	Text         string `json:"text,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	LanguageName string `json:"language_name,omitempty"`
	Source       string `json:"source,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
	Message      string `json:"message,omitempty"`
}

type translateResponse struct {
	Timestamp      string `json:"timestamp"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	InputText      string `json:"input_text"`
	OutputText     string `json:"output_text"`
}

func main() {
	host := flag.String("host", "localhost:8080", "server host:port")
	audioPath := flag.String("audio", "sample_audio.raw", "PCM16LE audio file to stream")
	language := flag.String("language", "auto", "source language code or auto")
	target := flag.String("target", "es", "target language code")
	sampleRate := flag.Int("rate", 16000, "sample rate of the audio file")
	output := flag.String("out", "", "write synthesized MP3 to this file")
	flag.Parse()

	session, err := createSession(*host)
	if err != nil {
		log.Fatal("create session: ", err)
	}
	log.Printf("session created: %s", session.SessionID)

	text, err := streamAndRecognize(*host, session.Token, *audioPath, *language, *sampleRate)
	if err != nil {
		log.Fatal("recognize: ", err)
	}

	translation, err := translateText(*host, session.Token, *target)
	if err != nil {
		log.Fatal("translate: ", err)
	}
	log.Printf("[%s] %s -> %s", translation.Timestamp, translation.SourceLanguage, translation.TargetLanguage)
	log.Printf("  in:  %s", text)
	log.Printf("  out: %s", translation.OutputText)

	if *output != "" {
		if err := synthesizeToFile(*host, session.Token, translation.OutputText, *target, *output); err != nil {
			log.Fatal("synthesize: ", err)
		}
		log.Printf("wrote %s", *output)
	}
}

func createSession(host string) (*sessionResponse, error) {
	resp, err := http.Post(fmt.Sprintf("http://%s/api/v1/sessions", host), "application/json", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var session sessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// streamAndRecognize plays the audio file into the server's capture loop and
// returns the recognized text.
func streamAndRecognize(host, token, audioPath, language string, sampleRate int) (string, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", err
	}

	u := url.URL{
		Scheme:   "ws",
		Host:     host,
		Path:     "/ws",
		RawQuery: url.Values{"token": {token}}.Encode(),
	}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	start := map[string]interface{}{
		"type":        "listening_start",
		"language":    language,
		"sample_rate": sampleRate,
		"encoding":    "pcm",
	}
	if err := writeJSON(conn, start); err != nil {
		return "", err
	}

	// Stream in ~100ms chunks so the energy gate sees a realistic pace.
	chunkSize := sampleRate / 10 * 2
	go func() {
		for offset := 0; offset < len(audio); offset += chunkSize {
			end := offset + chunkSize
			if end > len(audio) {
				end = len(audio)
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, audio[offset:end]); err != nil {
				log.Printf("stream interrupted: %v", err)
				return
			}
			time.Sleep(100 * time.Millisecond)
		}
		_ = writeJSON(conn, map[string]interface{}{"type": "listening_end"})
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return "", err
		}

		var msg serverMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Printf("unparseable message: %s", payload)
			continue
		}

		switch msg.Type {
		case "status":
			log.Printf("status: %s", msg.Stage)
		case "recognition_result":
			log.Printf("recognized (%s, %s): %s", msg.LanguageName, msg.Source, msg.Text)
			return msg.Text, nil
		case "error":
			return "", fmt.Errorf("%s: %s", msg.ErrorCode, msg.Message)
		}
	}
}

func translateText(host, token, target string) (*translateResponse, error) {
	payload, _ := json.Marshal(map[string]string{"target": target})
	body, err := authedPost(host, token, "/api/v1/translate", "application/json", payload)
	if err != nil {
		return nil, err
	}

	var translation translateResponse
	if err := json.Unmarshal(body, &translation); err != nil {
		return nil, err
	}
	return &translation, nil
}

func synthesizeToFile(host, token, text, language, path string) error {
	payload, _ := json.Marshal(map[string]string{"text": text, "language": language})
	audio, err := authedPost(host, token, "/api/v1/synthesize", "application/json", payload)
	if err != nil {
		return err
	}
	return os.WriteFile(path, audio, 0644)
}

func authedPost(host, token, path, contentType string, payload []byte) ([]byte, error) {
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s%s", host, path), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

func writeJSON(conn *websocket.Conn, message map[string]interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
