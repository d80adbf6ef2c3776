package source

import (
	"context"
	"encoding/json"
	"net"
	"net/url"
	"path"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"

	"github.com/vitisgeo/terroir-cli/internal/resilience"
	"github.com/vitisgeo/terroir-cli/pkg/eogrid"
)

// MirrorFetcher downloads scene payloads from FTP mirrors. Mirrors serve the
// same JSON documents as the export API, one file per scene.
type MirrorFetcher struct {
	Timeout time.Duration
}

// NewMirrorFetcher creates a fetcher with a 30s dial/transfer timeout.
func NewMirrorFetcher() *MirrorFetcher {
	return &MirrorFetcher{Timeout: 30 * time.Second}
}

// mirrorScenePath resolves an ftp:// base URL and scene ID to host and file
// path.
func mirrorScenePath(baseURL, sceneID string) (host, filePath string, err error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", "", eris.Wrap(err, "parse mirror url")
	}
	if u.Scheme != "ftp" {
		return "", "", eris.Errorf("mirror url must be ftp://, got %q", u.Scheme)
	}
	host = u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}
	return host, path.Join(u.Path, sceneID+".json"), nil
}

// FetchScene downloads and decodes one scene payload from the mirror.
// Connection failures are marked transient so the caller's retry loop can
// take another pass.
func (m *MirrorFetcher) FetchScene(ctx context.Context, baseURL, sceneID string) (*eogrid.SceneData, error) {
	host, filePath, err := mirrorScenePath(baseURL, sceneID)
	if err != nil {
		return nil, err
	}

	conn, err := ftp.Dial(host, ftp.DialWithContext(ctx), ftp.DialWithTimeout(m.Timeout))
	if err != nil {
		return nil, resilience.MarkTransient(eris.Wrapf(err, "dial mirror %s", host))
	}
	defer func() { _ = conn.Quit() }()

	if err := conn.Login("anonymous", "anonymous"); err != nil {
		return nil, eris.Wrapf(err, "login to mirror %s", host)
	}

	resp, err := conn.Retr(filePath)
	if err != nil {
		return nil, resilience.MarkTransient(eris.Wrapf(err, "retrieve %s", filePath))
	}
	defer func() { _ = resp.Close() }()

	var data eogrid.SceneData
	if err := json.NewDecoder(resp).Decode(&data); err != nil {
		return nil, eris.Wrapf(err, "decode mirror payload %s", filePath)
	}
	return &data, nil
}
