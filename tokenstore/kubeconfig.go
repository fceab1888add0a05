package tokenstore

import (
	"context"
	"errors"
	"io/fs"

	"github.com/Atrox/homedir"
	"github.com/samber/oops"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/clientcmd/api"
)

// DefaultKubeUser is the kubeconfig user entry that holds the token.
const DefaultKubeUser = "datica"

// Kubeconfig keeps the token as the bearer token of one user entry in a
// kubeconfig file, so kubectl can present the same session to a cluster.
type Kubeconfig struct {
	path string
	user string
}

// NewKubeconfig returns a store writing to the kubeconfig at path (or the
// default loading rules' file when empty) under the given user name.
func NewKubeconfig(path, user string) (*Kubeconfig, error) {
	if user == "" {
		user = DefaultKubeUser
	}
	if path == "" {
		path = clientcmd.NewDefaultClientConfigLoadingRules().GetDefaultFilename()
	}
	exp, err := homedir.Expand(path)
	if err != nil {
		return nil, oops.Code("TOKENSTORE_PATH").With("path", path).Wrap(err)
	}
	return &Kubeconfig{path: exp, user: user}, nil
}

func (k *Kubeconfig) load() (*api.Config, error) {
	conf, err := clientcmd.LoadFromFile(k.path)
	if errors.Is(err, fs.ErrNotExist) {
		return api.NewConfig(), nil
	}
	if err != nil {
		return nil, oops.Code("TOKENSTORE_READ").With("path", k.path).Wrap(err)
	}
	return conf, nil
}

// Get returns the token of the configured user. Nothing is returned if the
// file or the user doesn't exist.
func (k *Kubeconfig) Get(_ context.Context) (string, bool, error) {
	conf, err := k.load()
	if err != nil {
		return "", false, err
	}
	info, ok := conf.AuthInfos[k.user]
	if !ok || info.Token == "" {
		return "", false, nil
	}
	return info.Token, true, nil
}

// Set persists a session token to the configured user, creating it if needed.
func (k *Kubeconfig) Set(_ context.Context, token string) error {
	conf, err := k.load()
	if err != nil {
		return err
	}
	if conf.AuthInfos == nil {
		conf.AuthInfos = map[string]*api.AuthInfo{}
	}
	info, ok := conf.AuthInfos[k.user]
	if !ok {
		info = api.NewAuthInfo()
		conf.AuthInfos[k.user] = info
	}
	info.Token = token
	if err := clientcmd.WriteToFile(*conf, k.path); err != nil {
		return oops.Code("TOKENSTORE_WRITE").With("path", k.path).Wrap(err)
	}
	return nil
}

// Remove deletes the configured user entry. Contexts referring to it are left alone.
func (k *Kubeconfig) Remove(_ context.Context) error {
	conf, err := k.load()
	if err != nil {
		return err
	}
	if _, ok := conf.AuthInfos[k.user]; !ok {
		return nil
	}
	delete(conf.AuthInfos, k.user)
	if err := clientcmd.WriteToFile(*conf, k.path); err != nil {
		return oops.Code("TOKENSTORE_REMOVE").With("path", k.path).Wrap(err)
	}
	return nil
}
