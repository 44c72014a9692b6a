/*
 * Copyright (c) 2023 shenjunzheng@gmail.com
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package util

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DefaultWorkDir 返回默认工作目录
func DefaultWorkDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.ExpandEnv("${USERPROFILE}"), "Documents", "mcpprobe")
	case "darwin":
		return filepath.Join(os.ExpandEnv("${HOME}"), "Documents", "mcpprobe")
	default:
		return filepath.Join(os.ExpandEnv("${HOME}"), "mcpprobe")
	}
}

// PrepareDir 确保目录存在
func PrepareDir(path string) error {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(path, 0755); err != nil {
				return err
			}
		} else {
			return err
		}
	} else if !stat.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
